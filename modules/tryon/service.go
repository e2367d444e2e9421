package tryon

import (
	"context"
	"fmt"
	"log"

	"ootd-tryon-server/modules/common/fallback"
	"ootd-tryon-server/modules/common/model"
	"ootd-tryon-server/modules/common/utils"
	"ootd-tryon-server/modules/gateway"
)

// Service - 가상 피팅 합성과 전후 비교 문장 생성
type Service struct {
	gw gateway.Gateway
}

func NewService(gw gateway.Gateway) *Service {
	return &Service{gw: gw}
}

// Composite - 인물 사진 위에 의상을 합성 (단일 시도)
// 결과 이미지는 인물 사진과 동일한 픽셀 크기로 정규화됨
func (s *Service) Composite(ctx context.Context, person model.EncodedImage, garmentImage []byte) ([]byte, error) {
	prompt := BuildCompositePrompt(person.Width, person.Height)

	result, err := s.gw.CompositeTryOn(ctx, person.Data, garmentImage, prompt)
	if err != nil {
		log.Printf("❌ [TryOn] 합성 실패: %v", err)
		return nil, model.NewUserError(model.ErrTitleTryOn, err)
	}
	if len(result) == 0 {
		log.Printf("❌ [TryOn] 합성 응답에 이미지가 없음")
		return nil, model.NewUserError(model.ErrTitleTryOn, fmt.Errorf("composite response contained no image"))
	}

	// 모델이 크기 제약을 어겨도 결과는 항상 인물 사진 크기로 맞춤
	normalized, err := utils.NormalizeToDimensions(result, person.Width, person.Height)
	if err != nil {
		log.Printf("❌ [TryOn] 합성 결과 디코딩 실패: %v", err)
		return nil, model.NewUserError(model.ErrTitleTryOn, err)
	}

	log.Printf("✅ [TryOn] 합성 완료 (%dx%d)", person.Width, person.Height)
	return normalized, nil
}

// Compare - 전후 비교 문장 생성
// 어떤 실패도 밖으로 내보내지 않고 고정 문장으로 대체됨
func (s *Service) Compare(ctx context.Context, beforeImage, afterImage []byte) string {
	text, err := s.gw.CompareStyles(ctx, beforeImage, afterImage, BuildComparePrompt())
	if err != nil {
		log.Printf("⚠️ [TryOn] 비교 문장 생성 실패, 기본 문장 사용: %v", err)
		return fallback.ComparisonSentence
	}
	if text == "" {
		log.Printf("⚠️ [TryOn] 비교 응답이 비어있음, 기본 문장 사용")
		return fallback.ComparisonSentence
	}
	return text
}
