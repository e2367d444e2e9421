package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"ootd-tryon-server/modules/common/fallback"
	"ootd-tryon-server/modules/common/model"
	"ootd-tryon-server/modules/common/storage"
	"ootd-tryon-server/modules/common/utils"
	"ootd-tryon-server/modules/garment"
	"ootd-tryon-server/modules/gender"
	"ootd-tryon-server/modules/progress"
	"ootd-tryon-server/modules/session"
	"ootd-tryon-server/modules/tryon"
)

// Service - 업로드부터 결과까지 피팅 플로우 전체를 지휘함
type Service struct {
	store   *session.Store
	gender  *gender.Service
	garment *garment.Service
	tryon   *tryon.Service
	hub     *progress.Hub
	archive *storage.Service
	queue   *Queue

	// Unknown을 해석할 때 쓰는 기본 연출값
	defaultGender model.Gender
}

func NewService(store *session.Store, genderSvc *gender.Service, garmentSvc *garment.Service, tryonSvc *tryon.Service, hub *progress.Hub, archive *storage.Service) *Service {
	return &Service{
		store:         store,
		gender:        genderSvc,
		garment:       garmentSvc,
		tryon:         tryonSvc,
		hub:           hub,
		archive:       archive,
		defaultGender: model.GenderFemale,
	}
}

// SetDefaultGender - DEFAULT_PRESENTATION 구성값 반영
func (s *Service) SetDefaultGender(g model.Gender) {
	s.defaultGender = g
}

// SetQueue - Redis 큐가 구성된 경우에만 연결됨
func (s *Service) SetQueue(q *Queue) {
	s.queue = q
}

func (s *Service) publish(sessionID string, state model.State, detail string) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(model.StageEvent{
		Type:      "stage",
		SessionID: sessionID,
		State:     state,
		Detail:    detail,
	})
}

// CreateSession - 빈 세션 발급
func (s *Service) CreateSession() session.Session {
	sess := s.store.Create()
	return *sess
}

// GetSession - 현재 스냅샷 조회
func (s *Service) GetSession(id string) (session.Session, error) {
	return s.store.Get(id)
}

// StartSession - 인물 사진 접수
// mirror는 전면 카메라 캡처의 좌우 반전 보정용
func (s *Service) StartSession(ctx context.Context, id string, imageData []byte, mirror bool) (session.Session, error) {
	if mirror {
		flipped, err := utils.MirrorHorizontal(imageData)
		if err != nil {
			return session.Session{}, fmt.Errorf("failed to mirror capture: %w", err)
		}
		imageData = flipped
	}

	width, height, err := utils.DecodeDimensions(imageData)
	if err != nil {
		return session.Session{}, fmt.Errorf("failed to decode person image: %w", err)
	}

	var token string
	err = s.store.Update(id, func(sess *session.Session) {
		sess.PersonImage = model.EncodedImage{Data: imageData, Width: width, Height: height}
		sess.State = model.StateSetPreferences
		sess.DetectedGender = model.GenderUnknown
		sess.ErrorTitle = ""
		sess.ErrorMessage = ""
		token = sess.GenerationToken
	})
	if err != nil {
		return session.Session{}, err
	}

	log.Printf("📸 [Pipeline] 인물 사진 접수: %s (%dx%d)", id, width, height)
	s.publish(id, model.StateSetPreferences, "person photo received")

	// 성별 추론은 백그라운드로 진행, 사용자는 기다리지 않음
	go func() {
		detected := s.gender.Classify(context.Background(), imageData)
		if err := s.store.UpdateIfToken(id, token, func(sess *session.Session) {
			sess.DetectedGender = detected
		}); err != nil {
			log.Printf("⚠️ [Pipeline] 성별 추론 결과 저장 실패: %v", err)
		}
	}()

	return s.store.Get(id)
}

// resolveGender - Unknown이면 구성된 기본값으로 해석
func (s *Service) resolveGender(detected model.Gender) model.Gender {
	if detected != model.GenderUnknown {
		return detected
	}
	return s.defaultGender
}

// SetPreferences - 취향 확정 후 의상 후보 생성
// 세션 상태는 모든 사전 검증을 통과한 뒤에만 바뀜
// 재제출 시 토큰이 회전되어 이전 시도의 늦은 결과는 버려짐
// 큐가 구성돼 있으면 작업을 넘기고, 아니면 인라인으로 실행함
func (s *Service) SetPreferences(ctx context.Context, id string, prefs model.Preferences) (session.Session, error) {
	if err := prefs.Validate(); err != nil {
		return session.Session{}, err
	}

	sess, err := s.store.Get(id)
	if err != nil {
		return session.Session{}, err
	}
	if len(sess.PersonImage.Data) == 0 {
		return session.Session{}, fmt.Errorf("session %s has no person image", id)
	}
	if sess.State == model.StateUploadPerson || sess.State == model.StateTryingOn {
		return session.Session{}, fmt.Errorf("cannot set preferences in state %s", sess.State)
	}
	staleToken := sess.GenerationToken

	token, err := s.store.UpdateWithNewToken(id, func(sess *session.Session) {
		sess.Preferences = prefs
		sess.State = model.StateGeneratingGarments
		sess.Candidates = nil
		sess.SelectedIndex = -1
		sess.ErrorTitle = ""
		sess.ErrorMessage = ""
	})
	if err != nil {
		return session.Session{}, err
	}

	s.publish(id, model.StateGeneratingGarments, "generating garment candidates")

	if s.queue != nil {
		// 큐에 남아있을 수 있는 이전 시도 작업 무효화
		s.queue.MarkCancelled(ctx, staleToken)
		if err := s.queue.Enqueue(ctx, Job{SessionID: id, Token: token}); err != nil {
			log.Printf("⚠️ [Pipeline] 큐 적재 실패, 인라인 실행으로 전환: %v", err)
			s.GenerateCandidates(ctx, id, token)
		}
	} else {
		s.GenerateCandidates(ctx, id, token)
	}

	return s.store.Get(id)
}

// GenerateCandidates - 메타데이터와 이미지를 동시 생성해 후보 목록을 완성함
// 둘 중 하나라도 실패하면 부분 결과를 버리고 SET_PREFERENCES로 되돌림
func (s *Service) GenerateCandidates(ctx context.Context, id, token string) {
	sess, err := s.store.Get(id)
	if err != nil {
		log.Printf("⚠️ [Pipeline] 후보 생성 대상 세션 없음: %s", id)
		return
	}
	if sess.GenerationToken != token {
		log.Printf("👀 [Pipeline] 낡은 토큰 후보 생성 건너뜀: %s", id)
		return
	}

	resolved := s.resolveGender(sess.DetectedGender)
	aspectRatio := utils.NearestAspectRatio(sess.PersonImage.Width, sess.PersonImage.Height)
	prefs := sess.Preferences

	var recs []model.GarmentRecommendation
	var images [][]byte

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recs, err = s.garment.Recommendations(gctx, prefs, resolved)
		return err
	})
	g.Go(func() error {
		var err error
		images, err = s.garment.Images(gctx, prefs, aspectRatio, resolved)
		return err
	})

	if err := g.Wait(); err != nil {
		title, message := userFacing(err)
		log.Printf("❌ [Pipeline] 후보 생성 실패: %s (%v)", title, err)
		s.store.UpdateIfToken(id, token, func(sess *session.Session) {
			sess.State = model.StateSetPreferences
			sess.Candidates = nil
			sess.ErrorTitle = title
			sess.ErrorMessage = message
		})
		s.publish(id, model.StateSetPreferences, title)
		return
	}

	// 이미지 수만큼 후보를 만들고, 메타데이터가 모자란 슬롯은 위치 라벨로 채움
	candidates := make([]model.GarmentCandidate, 0, len(images))
	for i, img := range images {
		cand := model.GarmentCandidate{Image: img}
		if i < len(recs) {
			cand.Recommendation = recs[i]
		} else {
			cand.Recommendation = model.GarmentRecommendation{
				ItemName:      fallback.PositionalLabel(i),
				StyleCategory: prefs.Style,
				Description:   "A generated piece matched to your preferences.",
			}
		}
		candidates = append(candidates, cand)
	}

	s.store.UpdateIfToken(id, token, func(sess *session.Session) {
		sess.Candidates = candidates
		sess.State = model.StateChooseGarment
	})
	log.Printf("✅ [Pipeline] 후보 %d개 준비 완료: %s", len(candidates), id)
	s.publish(id, model.StateChooseGarment, fmt.Sprintf("%d candidates ready", len(candidates)))
}

// SelectGarment - 후보 선택 (CHOOSE_GARMENT 상태에서만 허용)
func (s *Service) SelectGarment(id string, index int) (session.Session, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return session.Session{}, err
	}
	if sess.State != model.StateChooseGarment {
		return session.Session{}, fmt.Errorf("cannot select garment in state %s", sess.State)
	}
	if index < 0 || index >= len(sess.Candidates) {
		return session.Session{}, fmt.Errorf("garment index out of range: %d", index)
	}

	err = s.store.Update(id, func(sess *session.Session) {
		sess.SelectedIndex = index
	})
	if err != nil {
		return session.Session{}, err
	}
	log.Printf("🎯 [Pipeline] 의상 선택: %s → %d", id, index)
	return s.store.Get(id)
}

// TryOn - 선택된 의상 합성 후 비교 문장 생성
// 합성 실패 시 CHOOSE_GARMENT로 되돌아가 다른 후보를 고를 수 있음
func (s *Service) TryOn(ctx context.Context, id string) (session.Session, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return session.Session{}, err
	}
	if sess.State != model.StateChooseGarment {
		return session.Session{}, fmt.Errorf("cannot try on in state %s", sess.State)
	}
	if sess.SelectedIndex < 0 || sess.SelectedIndex >= len(sess.Candidates) {
		return session.Session{}, fmt.Errorf("no garment selected")
	}

	token := sess.GenerationToken
	selected := sess.Candidates[sess.SelectedIndex]

	s.store.Update(id, func(sess *session.Session) {
		sess.State = model.StateTryingOn
		sess.ErrorTitle = ""
		sess.ErrorMessage = ""
	})
	s.publish(id, model.StateTryingOn, "compositing try-on")

	result, err := s.tryon.Composite(ctx, sess.PersonImage, selected.Image)
	if err != nil {
		title, message := userFacing(err)
		log.Printf("❌ [Pipeline] 합성 실패: %s (%v)", title, err)
		s.store.UpdateIfToken(id, token, func(sess *session.Session) {
			sess.State = model.StateChooseGarment
			sess.ErrorTitle = title
			sess.ErrorMessage = message
		})
		s.publish(id, model.StateChooseGarment, title)
		return s.store.Get(id)
	}

	// 비교 문장 실패는 절대 플로우를 막지 않음
	comparison := s.tryon.Compare(ctx, sess.PersonImage.Data, result)

	s.store.UpdateIfToken(id, token, func(sess *session.Session) {
		sess.ResultImage = result
		sess.ComparisonText = comparison
		sess.State = model.StateShowResult
	})
	log.Printf("✅ [Pipeline] 피팅 완료: %s", id)
	s.publish(id, model.StateShowResult, "try-on complete")

	// 결과 아카이브는 백그라운드, 실패해도 사용자에게는 영향 없음
	if s.archive != nil {
		go s.archive.ArchiveResult(context.Background(), id, result, selected.Recommendation.ItemName)
	}

	return s.store.Get(id)
}

// Reset - 어떤 상태에서든 초기 상태로 복귀
// 토큰이 회전되므로 진행 중이던 비동기 결과는 모두 버려짐
func (s *Service) Reset(id string) (session.Session, error) {
	if s.queue != nil {
		if sess, err := s.store.Get(id); err == nil {
			s.queue.MarkCancelled(context.Background(), sess.GenerationToken)
		}
	}
	if err := s.store.Reset(id); err != nil {
		return session.Session{}, err
	}
	s.publish(id, model.StateUploadPerson, "session reset")
	return s.store.Get(id)
}

// userFacing - 에러를 사용자 노출용 타이틀/메시지로 분해
func userFacing(err error) (string, string) {
	var ue *model.UserError
	if errors.As(err, &ue) {
		message := ""
		if ue.Err != nil {
			message = ue.Err.Error()
		}
		return ue.Title, message
	}
	return "Something went wrong", err.Error()
}
