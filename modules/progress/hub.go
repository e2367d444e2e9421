package progress

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ootd-tryon-server/modules/common/model"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 개발용 - 모든 origin 허용
		return true
	},
}

// watcher - 한 세션의 진행 상황을 구독하는 연결
type watcher struct {
	conn *websocket.Conn
	send chan []byte
}

// group - 세션 하나를 지켜보는 watcher 집합
type group struct {
	watchers     map[*watcher]bool
	mutex        sync.RWMutex
	lastActivity time.Time
}

// Hub - 세션별 진행 상황 브로드캐스터
type Hub struct {
	groups map[string]*group
	mutex  sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		groups: make(map[string]*group),
	}
}

func (h *Hub) getOrCreateGroup(sessionID string) *group {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	g, exists := h.groups[sessionID]
	if !exists {
		g = &group{
			watchers:     make(map[*watcher]bool),
			lastActivity: time.Now(),
		}
		h.groups[sessionID] = g
	}
	g.lastActivity = time.Now()
	return g
}

// Publish - 세션의 모든 watcher에게 단계 이벤트 전송
// 구독자가 없으면 조용히 버려짐
func (h *Hub) Publish(event model.StageEvent) {
	h.mutex.RLock()
	g, exists := h.groups[event.SessionID]
	h.mutex.RUnlock()
	if !exists {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ [Progress] 이벤트 직렬화 실패: %v", err)
		return
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.lastActivity = time.Now()
	for w := range g.watchers {
		select {
		case w.send <- payload:
		default:
			// 소비가 막힌 연결은 제거
			close(w.send)
			delete(g.watchers, w)
		}
	}
}

// HandleWS - /ws?session=<id> 업그레이드 핸들러
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		log.Printf("Missing session parameter")
		conn.Close()
		return
	}

	watch := &watcher{
		conn: conn,
		send: make(chan []byte, 64),
	}

	g := h.getOrCreateGroup(sessionID)
	g.mutex.Lock()
	g.watchers[watch] = true
	count := len(g.watchers)
	g.mutex.Unlock()

	log.Printf("🔍 [Progress] 구독 시작 - Session: %s (watchers: %d)", sessionID, count)

	go watch.writePump()
	go watch.readPump(h, sessionID, g)
}

// readPump - 클라이언트는 보내는 게 없고, 연결 종료 감지용으로만 읽음
func (w *watcher) readPump(h *Hub, sessionID string, g *group) {
	defer func() {
		g.mutex.Lock()
		if _, ok := g.watchers[w]; ok {
			delete(g.watchers, w)
			close(w.send)
		}
		remaining := len(g.watchers)
		g.mutex.Unlock()
		w.conn.Close()
		log.Printf("👋 [Progress] 구독 종료 - Session: %s (remaining: %d)", sessionID, remaining)
	}()

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

func (w *watcher) writePump() {
	defer w.conn.Close()

	for message := range w.send {
		if err := w.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	w.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// StartCleanupRoutine - 비어있고 오래된 그룹 정리 루프
func (h *Hub) StartCleanupRoutine(interval, maxIdle time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				h.cleanup(maxIdle)
			case <-stop:
				return
			}
		}
	}()
}

func (h *Hub) cleanup(maxIdle time.Duration) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	now := time.Now()
	for sessionID, g := range h.groups {
		g.mutex.RLock()
		empty := len(g.watchers) == 0
		idle := now.Sub(g.lastActivity) > maxIdle
		g.mutex.RUnlock()
		if empty && idle {
			delete(h.groups, sessionID)
			log.Printf("🗑️ [Progress] 빈 그룹 정리: %s", sessionID)
		}
	}
}

// ActiveGroups - 메트릭용
func (h *Hub) ActiveGroups() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.groups)
}
