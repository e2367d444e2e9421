package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	jobQueueKey = "tryon:jobs"
	cancelTTL   = 30 * time.Minute
)

// Job - 큐로 넘어가는 의상 후보 생성 작업
type Job struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

// Queue - Redis 작업 큐 래퍼
type Queue struct {
	rdb *redis.Client
}

func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

// Enqueue - 작업 적재 (LPUSH)
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if _, err := q.rdb.LPush(ctx, jobQueueKey, payload).Result(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	log.Printf("📤 [Queue] 작업 적재: %s", job.SessionID)
	return nil
}

// MarkCancelled - 토큰 기반 취소 플래그 설정
// 세션 리셋 시 호출되어 대기 중인 작업을 무효화함
func (q *Queue) MarkCancelled(ctx context.Context, token string) {
	if err := q.rdb.Set(ctx, cancelKey(token), "1", cancelTTL).Err(); err != nil {
		log.Printf("⚠️ [Queue] 취소 플래그 설정 실패: %v", err)
	}
}

// IsCancelled - 취소 플래그 확인
func (q *Queue) IsCancelled(ctx context.Context, token string) bool {
	val, err := q.rdb.Get(ctx, cancelKey(token)).Result()
	if err != nil {
		return false
	}
	return val == "1"
}

func cancelKey(token string) string {
	return "cancel:" + token
}

// StartWorker - 무한 루프로 Queue 감시
func (q *Queue) StartWorker(svc *Service) {
	go func() {
		log.Printf("👀 [Queue] Watching queue: %s", jobQueueKey)
		ctx := context.Background()

		for {
			// BRPOP - Blocking Right Pop
			result, err := q.rdb.BRPop(ctx, 0, jobQueueKey).Result()
			if err != nil {
				log.Printf("Redis BRPOP error: %v", err)
				time.Sleep(5 * time.Second)
				continue
			}

			// result[0]은 큐 이름, result[1]이 실제 페이로드
			var job Job
			if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
				log.Printf("❌ [Queue] 작업 역직렬화 실패: %v", err)
				continue
			}

			go q.processJob(ctx, svc, job)
		}
	}()
}

func (q *Queue) processJob(ctx context.Context, svc *Service, job Job) {
	log.Printf("🎨 [Queue] 작업 시작: %s", job.SessionID)

	// 모델 호출 전 취소 확인
	if q.IsCancelled(ctx, job.Token) {
		log.Printf("🛑 [Queue] 취소된 작업 건너뜀: %s", job.SessionID)
		return
	}

	svc.GenerateCandidates(ctx, job.SessionID, job.Token)

	// 모델 호출 후에도 확인 - 생성 중 취소됐으면 결과는 이미 토큰 불일치로 버려짐
	if q.IsCancelled(ctx, job.Token) {
		log.Printf("🛑 [Queue] 생성 중 취소됨, 결과 폐기: %s", job.SessionID)
	}
}
