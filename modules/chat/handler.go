package chat

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"ootd-tryon-server/modules/common/model"
)

// Handler - 스타일리스트 채팅 HTTP 핸들러
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/chat/session", h.HandleOpen).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/chat/session/{chatId}/message", h.HandleMessage).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/chat/session/{chatId}", h.HandleHistory).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/chat/session/{chatId}", h.HandleClose).Methods("DELETE")
	log.Println("✅ Chat routes registered: /api/chat/*")
}

type messageRequest struct {
	Text string `json:"text"`
}

type chatResponse struct {
	Success bool                `json:"success"`
	ChatID  string              `json:"chatId,omitempty"`
	Reply   string              `json:"reply,omitempty"`
	History []model.ChatMessage `json:"history,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func setCORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// HandleOpen - POST /api/chat/session
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r) {
		return
	}

	id := h.service.Open()
	json.NewEncoder(w).Encode(chatResponse{Success: true, ChatID: id})
}

// HandleMessage - POST /api/chat/session/{chatId}/message
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r) {
		return
	}

	chatID := mux.Vars(r)["chatId"]

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(chatResponse{Success: false, Error: "Invalid request body"})
		return
	}

	reply, err := h.service.Send(r.Context(), chatID, req.Text)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(chatResponse{Success: false, Error: err.Error()})
		return
	}

	json.NewEncoder(w).Encode(chatResponse{Success: true, ChatID: chatID, Reply: reply})
}

// HandleHistory - GET /api/chat/session/{chatId}
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r) {
		return
	}

	chatID := mux.Vars(r)["chatId"]
	history, err := h.service.History(chatID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(chatResponse{Success: false, Error: err.Error()})
		return
	}

	json.NewEncoder(w).Encode(chatResponse{Success: true, ChatID: chatID, History: history})
}

// HandleClose - DELETE /api/chat/session/{chatId}
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	chatID := mux.Vars(r)["chatId"]
	h.service.Close(chatID)
	json.NewEncoder(w).Encode(chatResponse{Success: true, ChatID: chatID})
}
