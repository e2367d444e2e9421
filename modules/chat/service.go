package chat

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"ootd-tryon-server/modules/common/model"
	"ootd-tryon-server/modules/gateway"
)

// maxHistory - 한 대화에 유지되는 최대 메시지 수 (초과분은 앞에서 잘림)
const maxHistory = 40

// systemInstruction - 스타일리스트 페르소나
// 마크다운/목록 금지, 평문만 허용됨
const systemInstruction = "You are a friendly, knowledgeable personal fashion stylist. " +
	"Give practical, encouraging styling advice about garments, colors, fits, and occasions. " +
	"Respond in plain conversational text only: no markdown, no bullet points, no headings. " +
	"Keep answers short, 2-4 sentences. Stay on the topic of fashion and styling."

// conversation - 채팅 히스토리
type conversation struct {
	history []model.ChatMessage
}

// Service - 스타일리스트 채팅
type Service struct {
	gw    gateway.Gateway
	mu    sync.Mutex
	convs map[string]*conversation
}

func NewService(gw gateway.Gateway) *Service {
	return &Service{
		gw:    gw,
		convs: make(map[string]*conversation),
	}
}

// Open - 새 대화 시작
func (s *Service) Open() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.convs[id] = &conversation{}
	log.Printf("💬 [Chat] 대화 시작: %s", id)
	return id
}

// Close - 대화 종료 및 히스토리 폐기
func (s *Service) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, id)
}

// History - 히스토리 스냅샷
func (s *Service) History(id string) ([]model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[id]
	if !ok {
		return nil, fmt.Errorf("chat not found: %s", id)
	}
	out := make([]model.ChatMessage, len(conv.history))
	copy(out, conv.history)
	return out, nil
}

// Send - 사용자 메시지를 히스토리에 붙여 전체 재생으로 응답 생성
// 실패 시 사용자 메시지는 히스토리에서 되돌려짐 (자동 재시도 없음)
func (s *Service) Send(ctx context.Context, id, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("message text is required")
	}

	s.mu.Lock()
	conv, ok := s.convs[id]
	if !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("chat not found: %s", id)
	}
	conv.history = append(conv.history, model.ChatMessage{Role: "user", Text: text})
	if len(conv.history) > maxHistory {
		conv.history = conv.history[len(conv.history)-maxHistory:]
	}
	history := make([]model.ChatMessage, len(conv.history))
	copy(history, conv.history)
	s.mu.Unlock()

	reply, err := s.gw.Chat(ctx, history, systemInstruction)
	if err != nil {
		log.Printf("❌ [Chat] 응답 생성 실패: %v", err)
		s.mu.Lock()
		if conv, ok := s.convs[id]; ok && len(conv.history) > 0 {
			conv.history = conv.history[:len(conv.history)-1]
		}
		s.mu.Unlock()
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	s.mu.Lock()
	if conv, ok := s.convs[id]; ok {
		conv.history = append(conv.history, model.ChatMessage{Role: "model", Text: reply})
	}
	s.mu.Unlock()

	return reply, nil
}
