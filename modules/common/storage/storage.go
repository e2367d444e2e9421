package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/supabase-community/supabase-go"

	"ootd-tryon-server/modules/common/config"
	"ootd-tryon-server/modules/common/fallback"
	"ootd-tryon-server/modules/common/utils"
)

// Service - 피팅 결과 아카이브 (Supabase Storage + 기록 테이블)
// 실패는 로그로만 남고 절대 사용자 플로우에 영향을 주지 않음
type Service struct {
	supabase *supabase.Client
}

// NewService - Supabase 구성이 없으면 nil 반환 (아카이브 비활성화)
func NewService() *Service {
	cfg := config.GetConfig()
	if !cfg.ArchiveEnabled() {
		return nil
	}

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Service{supabase: supabaseClient}
}

// ArchiveResult - 결과 이미지를 WebP로 변환해 업로드하고 기록을 남김
func (s *Service) ArchiveResult(ctx context.Context, sessionID string, imageData []byte, itemName string) {
	filePath, size, err := s.uploadWebP(ctx, sessionID, imageData)
	if err != nil {
		log.Printf("⚠️ [Archive] 업로드 실패 (무시됨): %v", err)
		return
	}

	record := map[string]interface{}{
		"session_id": sessionID,
		"item_name":  fallback.SafeString(itemName, "Generated look"),
		"file_path":  filePath,
		"file_size":  size,
		"created_at": "now()",
	}
	if _, _, err := s.supabase.From("ootd_result").Insert(record, false, "", "", "").Execute(); err != nil {
		log.Printf("⚠️ [Archive] 기록 삽입 실패 (무시됨): %v", err)
		return
	}

	log.Printf("✅ [Archive] 결과 아카이브 완료: %s (%d bytes)", filePath, size)
}

// uploadWebP - PNG를 WebP(quality 90)로 변환 후 Storage API로 업로드
func (s *Service) uploadWebP(ctx context.Context, sessionID string, imageData []byte) (string, int64, error) {
	cfg := config.GetConfig()

	webpData, err := utils.ConvertPNGToWebP(imageData, 90.0)
	if err != nil {
		return "", 0, fmt.Errorf("failed to convert PNG to WebP: %w", err)
	}

	timestamp := time.Now().UnixNano() / int64(time.Millisecond)
	fileName := fmt.Sprintf("result_%d.webp", timestamp)
	filePath := fmt.Sprintf("tryon-results/session-%s/%s", sessionID, fileName)

	log.Printf("📤 [Archive] Uploading WebP image to storage: %s", filePath)

	uploadURL := fmt.Sprintf("%s/storage/v1/object/attachments/%s", cfg.SupabaseURL, filePath)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(webpData))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.SupabaseServiceKey)
	req.Header.Set("Content-Type", "image/webp")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return filePath, int64(len(webpData)), nil
}
