package garment

import (
	"context"
	"fmt"
	"log"
	"sync"

	"ootd-tryon-server/modules/common/model"
	"ootd-tryon-server/modules/gateway"
)

// Service - 의상 메타데이터/이미지 생성
type Service struct {
	gw gateway.Gateway
}

func NewService(gw gateway.Gateway) *Service {
	return &Service{gw: gw}
}

// Recommendations - 메타데이터 3건 생성 (단일 시도, 자동 재시도 없음)
// 빈 결과와 전송 오류는 같은 타이틀로 분류됨
func (s *Service) Recommendations(ctx context.Context, prefs model.Preferences, gender model.Gender) ([]model.GarmentRecommendation, error) {
	prompt := BuildRecommendationPrompt(prefs, gender)

	recs, err := s.gw.GenerateRecommendations(ctx, prompt)
	if err != nil {
		log.Printf("❌ [Garment] 메타데이터 생성 실패: %v", err)
		return nil, model.NewUserError(model.ErrTitleGarmentDetails, err)
	}
	if len(recs) == 0 {
		log.Printf("❌ [Garment] 메타데이터 응답이 비어있음")
		return nil, model.NewUserError(model.ErrTitleGarmentDetails, fmt.Errorf("empty recommendation response"))
	}
	if len(recs) > 3 {
		recs = recs[:3]
	}

	log.Printf("✅ [Garment] 메타데이터 %d건 생성 완료", len(recs))
	return recs, nil
}

// imageSlot - 시도별 격리 결과 컨테이너
type imageSlot struct {
	image []byte
	err   error
}

// Images - 이미지 3장 동시 생성
// 각 시도는 서로 독립이며, 하나가 실패해도 나머지는 계속 진행됨
// 1장 이상 성공하면 성공, 전부 실패하면 배치 전체 에러
func (s *Service) Images(ctx context.Context, prefs model.Preferences, aspectRatio string, gender model.Gender) ([][]byte, error) {
	prompts := BuildImagePrompts(prefs, gender)
	slots := make([]imageSlot, len(prompts))

	var wg sync.WaitGroup
	for i, prompt := range prompts {
		wg.Add(1)
		go func(idx int, p string) {
			defer wg.Done()
			image, err := s.gw.SynthesizeImage(ctx, p, aspectRatio)
			slots[idx] = imageSlot{image: image, err: err}
		}(i, prompt)
	}
	wg.Wait()

	// 순서 보존하며 성공분만 수집
	images := make([][]byte, 0, len(slots))
	for i, slot := range slots {
		if slot.err != nil {
			log.Printf("⚠️ [Garment] 이미지 %d번 생성 실패: %v", i+1, slot.err)
			continue
		}
		if len(slot.image) == 0 {
			log.Printf("⚠️ [Garment] 이미지 %d번 응답에 이미지가 없음", i+1)
			continue
		}
		images = append(images, slot.image)
	}

	if len(images) == 0 {
		log.Printf("❌ [Garment] 이미지 배치 전체 실패 (0/%d)", len(slots))
		return nil, model.NewUserError(model.ErrTitleGarmentImages, fmt.Errorf("all %d image attempts failed", len(slots)))
	}

	log.Printf("✅ [Garment] 이미지 %d/%d장 생성 완료 (비율 %s)", len(images), len(slots), aspectRatio)
	return images, nil
}
