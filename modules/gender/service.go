package gender

import (
	"context"
	"log"

	"ootd-tryon-server/modules/common/model"
	"ootd-tryon-server/modules/gateway"
)

// Service - 인물 사진 1장 → Male|Female|Unknown
// 이 호출은 파이프라인을 절대 실패시키지 않음: 모든 에러는 Unknown으로 흡수됨
type Service struct {
	gw gateway.Gateway
}

func NewService(gw gateway.Gateway) *Service {
	return &Service{gw: gw}
}

// Classify - 스타일링 단서 기반 분류
func (s *Service) Classify(ctx context.Context, personImage []byte) model.Gender {
	if len(personImage) == 0 {
		return model.GenderUnknown
	}

	raw, err := s.gw.ClassifyStyle(ctx, personImage, BuildClassifyPrompt())
	if err != nil {
		log.Printf("⚠️ [Gender] Classification failed, falling back to Unknown: %v", err)
		return model.GenderUnknown
	}

	result := model.ParseGender(raw)
	log.Printf("✅ [Gender] Classified styling presentation: %s", result)
	return result
}
