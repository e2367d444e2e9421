package gateway

import (
	"context"

	"ootd-tryon-server/modules/common/model"
)

// Gateway - 외부 생성 모델 경계
// 파이프라인 쪽 서비스들은 이 인터페이스로만 모델을 호출함
type Gateway interface {
	// ClassifyStyle - 스타일링 단서 기반 분류, enum 제약 구조화 응답
	ClassifyStyle(ctx context.Context, personImage []byte, prompt string) (string, error)

	// GenerateRecommendations - 스키마 검증된 JSON 배열 응답
	GenerateRecommendations(ctx context.Context, prompt string) ([]model.GarmentRecommendation, error)

	// SynthesizeImage - 프롬프트 1건당 PNG 1장
	SynthesizeImage(ctx context.Context, prompt string, aspectRatio string) ([]byte, error)

	// CompositeTryOn - 인물 + 의상 → 합성 이미지 1장
	CompositeTryOn(ctx context.Context, personImage, garmentImage []byte, prompt string) ([]byte, error)

	// CompareStyles - 합성 전/후 이미지 비교 한 문장
	CompareStyles(ctx context.Context, beforeImage, afterImage []byte, prompt string) (string, error)

	// Chat - 히스토리 전체를 실어 보내는 대화 응답 (plain text)
	Chat(ctx context.Context, history []model.ChatMessage, systemInstruction string) (string, error)
}

// classifyResult - 구조화 분류 응답 포맷
type classifyResult struct {
	Gender string `json:"gender"`
}
