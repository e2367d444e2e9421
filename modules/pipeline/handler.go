package pipeline

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"ootd-tryon-server/modules/common/fallback"
	"ootd-tryon-server/modules/common/model"
	"ootd-tryon-server/modules/common/utils"
	"ootd-tryon-server/modules/session"
)

// Handler - 피팅 플로우 HTTP 핸들러
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/session", h.HandleCreate).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/session/capture", h.HandleCapture).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/session/{sessionId}", h.HandleGet).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/session/{sessionId}/preferences", h.HandlePreferences).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/session/{sessionId}/select", h.HandleSelect).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/session/{sessionId}/tryon", h.HandleTryOn).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/session/{sessionId}/reset", h.HandleReset).Methods("POST", "OPTIONS")
	log.Println("✅ Session routes registered: /api/session/*")
}

// uploadRequest - 인물 사진 접수 요청
type uploadRequest struct {
	Image string `json:"image"` // base64 (data URL 허용)
}

type preferencesRequest struct {
	Style    string `json:"style"`
	Colors   string `json:"colors"`
	Occasion string `json:"occasion"`
}

type selectRequest struct {
	Index int `json:"index"`
}

// candidateView - 후보 응답 (이미지는 base64)
type candidateView struct {
	Image          string                      `json:"image"`
	Recommendation model.GarmentRecommendation `json:"recommendation"`
}

// sessionView - 세션 응답 DTO
type sessionView struct {
	ID             string            `json:"id"`
	State          model.State       `json:"state"`
	ImageWidth     int               `json:"imageWidth,omitempty"`
	ImageHeight    int               `json:"imageHeight,omitempty"`
	Preferences    model.Preferences `json:"preferences"`
	DetectedGender model.Gender      `json:"detectedGender"`
	Candidates     []candidateView   `json:"candidates,omitempty"`
	SelectedIndex  int               `json:"selectedIndex"`
	ResultImage    string            `json:"resultImage,omitempty"`
	ComparisonText string            `json:"comparisonText,omitempty"`
	ErrorTitle     string            `json:"errorTitle,omitempty"`
	ErrorMessage   string            `json:"errorMessage,omitempty"`
}

type sessionResponse struct {
	Success      bool         `json:"success"`
	Session      *sessionView `json:"session,omitempty"`
	ErrorTitle   string       `json:"error_title,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

func toView(sess session.Session) *sessionView {
	view := &sessionView{
		ID:             sess.ID,
		State:          sess.State,
		ImageWidth:     sess.PersonImage.Width,
		ImageHeight:    sess.PersonImage.Height,
		Preferences:    sess.Preferences,
		DetectedGender: sess.DetectedGender,
		SelectedIndex:  sess.SelectedIndex,
		ComparisonText: sess.ComparisonText,
		ErrorTitle:     sess.ErrorTitle,
		ErrorMessage:   sess.ErrorMessage,
	}
	for _, cand := range sess.Candidates {
		imageData := cand.Image
		if len(imageData) == 0 {
			imageData = fallback.PlaceholderBytes()
		}
		view.Candidates = append(view.Candidates, candidateView{
			Image:          utils.EncodeBase64(imageData),
			Recommendation: cand.Recommendation,
		})
	}
	if len(sess.ResultImage) > 0 {
		view.ResultImage = utils.EncodeBase64(sess.ResultImage)
	}
	return view
}

// setCORS - 응답 헤더 + OPTIONS 처리
func setCORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func writeError(w http.ResponseWriter, status int, err error) {
	title := "Something went wrong"
	message := err.Error()
	var ue *model.UserError
	if errors.As(err, &ue) {
		title = ue.Title
		if ue.Err != nil {
			message = ue.Err.Error()
		}
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(sessionResponse{
		Success:      false,
		ErrorTitle:   title,
		ErrorMessage: message,
	})
}

func writeSession(w http.ResponseWriter, sess session.Session) {
	json.NewEncoder(w).Encode(sessionResponse{
		Success: true,
		Session: toView(sess),
	})
}

// HandleCreate - POST /api/session
// 이미지가 포함되면 바로 인물 사진 접수까지 진행함
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r) {
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Image != "" {
		h.startWithImage(w, r, req.Image, false)
		return
	}
	writeSession(w, h.service.CreateSession())
}

// HandleCapture - POST /api/session/capture
// 전면 카메라 프레임은 좌우 반전 보정 후 접수됨
func (h *Handler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r) {
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Image == "" {
		writeError(w, http.StatusBadRequest, errors.New("image is required"))
		return
	}

	h.startWithImage(w, r, req.Image, true)
}

// startWithImage - 이미지 디코딩이 성공한 뒤에야 세션을 만듦
func (h *Handler) startWithImage(w http.ResponseWriter, r *http.Request, encoded string, mirror bool) {
	imageData, err := utils.DecodeBase64(encoded)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created := h.service.CreateSession()
	sess, err := h.service.StartSession(r.Context(), created.ID, imageData, mirror)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeSession(w, sess)
}

// HandleGet - GET /api/session/{sessionId}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r) {
		return
	}

	sessionID := mux.Vars(r)["sessionId"]
	sess, err := h.service.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeSession(w, sess)
}

// HandlePreferences - POST /api/session/{sessionId}/preferences
func (h *Handler) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r) {
		return
	}

	sessionID := mux.Vars(r)["sessionId"]

	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	prefs := model.Preferences{Style: req.Style, Colors: req.Colors, Occasion: req.Occasion}
	sess, err := h.service.SetPreferences(r.Context(), sessionID, prefs)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeSession(w, sess)
}

// HandleSelect - POST /api/session/{sessionId}/select
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r) {
		return
	}

	sessionID := mux.Vars(r)["sessionId"]

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess, err := h.service.SelectGarment(sessionID, req.Index)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeSession(w, sess)
}

// HandleTryOn - POST /api/session/{sessionId}/tryon
// 합성 실패는 200 응답 안의 errorTitle로 전달됨 (세션은 후보 선택으로 복귀)
func (h *Handler) HandleTryOn(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r) {
		return
	}

	sessionID := mux.Vars(r)["sessionId"]
	sess, err := h.service.TryOn(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeSession(w, sess)
}

// HandleReset - POST /api/session/{sessionId}/reset
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r) {
		return
	}

	sessionID := mux.Vars(r)["sessionId"]
	sess, err := h.service.Reset(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeSession(w, sess)
}
