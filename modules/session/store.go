package session

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"ootd-tryon-server/modules/common/model"
)

// Store - 세션 인메모리 저장소
// 모든 접근은 단일 뮤텍스로 직렬화됨
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create - 새 세션 발급 (초기 상태 UPLOAD_PERSON)
func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &Session{
		ID:              uuid.New().String(),
		State:           model.StateUploadPerson,
		Preferences:     model.DefaultPreferences(),
		DetectedGender:  model.GenderUnknown,
		SelectedIndex:   -1,
		GenerationToken: uuid.New().String(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.sessions[sess.ID] = sess
	log.Printf("✅ [Session] 세션 생성: %s", sess.ID)
	return sess
}

// Get - 세션 스냅샷 복사본 반환
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("session not found: %s", id)
	}
	return *sess, nil
}

// Update - 뮤텍스 보호 하에 세션을 제자리 수정
func (s *Store) Update(id string, fn func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session not found: %s", id)
	}
	fn(sess)
	sess.UpdatedAt = time.Now()
	return nil
}

// UpdateWithNewToken - 토큰을 회전시키면서 수정
// 새 생성 시도가 시작될 때 호출되어, 이전 시도의 늦은 결과를 무효화함
func (s *Store) UpdateWithNewToken(id string, fn func(*Session)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return "", fmt.Errorf("session not found: %s", id)
	}
	sess.GenerationToken = uuid.New().String()
	fn(sess)
	sess.UpdatedAt = time.Now()
	return sess.GenerationToken, nil
}

// UpdateIfToken - 비동기 결과 적용 전 토큰 검사
// 토큰이 회전된 뒤 도착한 결과는 조용히 버려짐
func (s *Store) UpdateIfToken(id, token string, fn func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session not found: %s", id)
	}
	if sess.GenerationToken != token {
		log.Printf("👀 [Session] 낡은 토큰 결과 무시: %s", id)
		return nil
	}
	fn(sess)
	sess.UpdatedAt = time.Now()
	return nil
}

// Reset - 세션을 초기 상태로 복원하고 토큰 회전
// 어떤 상태에서 호출해도 같은 결과가 되는 단일 경로
func (s *Store) Reset(id string) error {
	return s.Update(id, func(sess *Session) {
		sess.State = model.StateUploadPerson
		sess.PersonImage = model.EncodedImage{}
		sess.Preferences = model.DefaultPreferences()
		sess.DetectedGender = model.GenderUnknown
		sess.Candidates = nil
		sess.SelectedIndex = -1
		sess.ResultImage = nil
		sess.ComparisonText = ""
		sess.ErrorTitle = ""
		sess.ErrorMessage = ""
		sess.GenerationToken = uuid.New().String()
		log.Printf("🔄 [Session] 세션 리셋: %s", sess.ID)
	})
}

// Count - 현재 세션 수 (메트릭용)
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CleanupExpired - TTL 초과 세션 일괄 정리
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("🗑️ [Session] 만료 세션 %d개 정리", removed)
	}
	return removed
}

// StartCleanupRoutine - 주기적 만료 정리 루프
func (s *Store) StartCleanupRoutine(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.CleanupExpired()
			case <-stop:
				return
			}
		}
	}()
}
