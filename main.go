package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ootd-tryon-server/modules/chat"
	"ootd-tryon-server/modules/common/config"
	"ootd-tryon-server/modules/common/model"
	redisClient "ootd-tryon-server/modules/common/redis"
	"ootd-tryon-server/modules/common/storage"
	"ootd-tryon-server/modules/garment"
	"ootd-tryon-server/modules/gateway"
	"ootd-tryon-server/modules/gender"
	"ootd-tryon-server/modules/pipeline"
	"ootd-tryon-server/modules/progress"
	"ootd-tryon-server/modules/session"
	"ootd-tryon-server/modules/tryon"
)

var startTime = time.Now()

// CORS 미들웨어
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "ootd-tryon-server",
	})
}

// 서버 메트릭 조회 엔드포인트
func metricsHandler(store *session.Store, hub *progress.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"server": map[string]interface{}{
				"uptime":    time.Since(startTime).String(),
				"startTime": startTime,
			},
			"sessions":       store.Count(),
			"progressGroups": hub.ActiveGroups(),
		})
	}
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Gemini 게이트웨이 초기화
	gw := gateway.NewService()
	if gw == nil {
		log.Fatal("❌ Failed to initialize Gemini gateway")
	}

	// 세션 저장소 + 정리 루틴
	store := session.NewStore(time.Duration(cfg.SessionTTLMinutes) * time.Minute)
	stop := make(chan struct{})
	store.StartCleanupRoutine(10*time.Minute, stop)

	// 진행 상황 WebSocket 허브
	hub := progress.NewHub()
	hub.StartCleanupRoutine(5*time.Minute, 30*time.Minute, stop)

	// 결과 아카이브 (Supabase 미구성 시 nil)
	archive := storage.NewService()

	// 도메인 서비스 조립
	genderSvc := gender.NewService(gw)
	garmentSvc := garment.NewService(gw)
	tryonSvc := tryon.NewService(gw)
	pipelineSvc := pipeline.NewService(store, genderSvc, garmentSvc, tryonSvc, hub, archive)
	pipelineSvc.SetDefaultGender(model.ParseGenderWithDefault(cfg.DefaultPresentation))
	chatSvc := chat.NewService(gw)

	// Redis Queue Worker 시작 (구성된 경우만)
	if cfg.QueueEnabled() {
		rdb := redisClient.Connect(cfg)
		if rdb == nil {
			log.Fatal("❌ Failed to connect to Redis")
		}
		queue := pipeline.NewQueue(rdb)
		pipelineSvc.SetQueue(queue)
		queue.StartWorker(pipelineSvc)
	}

	// 라우터 설정
	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ws", hub.HandleWS)
	r.HandleFunc("/metrics", metricsHandler(store, hub)).Methods("GET")

	pipeline.NewHandler(pipelineSvc).RegisterRoutes(r)
	chat.NewHandler(chatSvc).RegisterRoutes(r)

	log.Printf("🚀 OOTD Try-On Server starting on port %s", cfg.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%s/ws", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("📊 Metrics: http://localhost:%s/metrics", cfg.Port)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
