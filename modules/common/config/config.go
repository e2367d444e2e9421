package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Gemini API
	GeminiAPIKey     string
	GeminiImageModel string
	GeminiTextModel  string

	// 스타일 추론이 끝나기 전에 사용자가 진행할 때 쓰는 기본 연출값
	DefaultPresentation string

	// Redis (없으면 인라인 처리)
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Supabase (없으면 결과 아카이브 비활성화)
	SupabaseURL            string
	SupabaseServiceKey     string
	SupabaseStorageBaseURL string

	// Server
	Port string

	// Session
	SessionTTLMinutes int
}

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	// Redis UseTLS 파싱
	useTLS := false // 기본값
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	// Session TTL 파싱
	sessionTTL := 120 // 기본값 (분)
	if ttlStr := os.Getenv("SESSION_TTL_MINUTES"); ttlStr != "" {
		if parsed, err := strconv.Atoi(ttlStr); err == nil && parsed > 0 {
			sessionTTL = parsed
		}
	}

	globalConfig = &Config{
		// Gemini API
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-2.0-flash"),

		DefaultPresentation: getEnv("DEFAULT_PRESENTATION", "Female"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		// Supabase
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:     getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBaseURL: getEnv("SUPABASE_STORAGE_BASE_URL", ""),

		// Server
		Port: getEnv("PORT", "8080"),

		// Session
		SessionTTLMinutes: sessionTTL,
	}

	// 필수 환경변수 검증
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Gemini image model: %s", globalConfig.GeminiImageModel)
	log.Printf("   Gemini text model: %s", globalConfig.GeminiTextModel)
	if globalConfig.QueueEnabled() {
		log.Printf("   Redis: %s (TLS: %v)", globalConfig.GetRedisAddr(), globalConfig.RedisUseTLS)
	} else {
		log.Printf("   Redis: disabled, garment generation runs inline")
	}
	if globalConfig.ArchiveEnabled() {
		log.Printf("   Supabase archive: %s", globalConfig.SupabaseURL)
	} else {
		log.Printf("   Supabase archive: disabled")
	}
	log.Printf("   Default presentation: %s", globalConfig.DefaultPresentation)
	log.Printf("   Session TTL: %d minutes", globalConfig.SessionTTLMinutes)

	return globalConfig, nil
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - 필수 환경변수 검증
func (c *Config) validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.DefaultPresentation != "Male" && c.DefaultPresentation != "Female" && c.DefaultPresentation != "Unknown" {
		return fmt.Errorf("DEFAULT_PRESENTATION must be Male, Female or Unknown, got %q", c.DefaultPresentation)
	}
	return nil
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// QueueEnabled - Redis Queue 사용 여부
func (c *Config) QueueEnabled() bool {
	return c.RedisHost != ""
}

// ArchiveEnabled - Supabase 결과 아카이브 사용 여부
func (c *Config) ArchiveEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}
