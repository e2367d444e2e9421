package session

import (
	"time"

	"ootd-tryon-server/modules/common/model"
)

// Session - 한 사용자의 피팅 플로우 전체 상태
// 인물 사진과 생성 결과는 메모리에만 보관됨
type Session struct {
	ID    string      `json:"id"`
	State model.State `json:"state"`

	PersonImage    model.EncodedImage `json:"personImage"`
	Preferences    model.Preferences  `json:"preferences"`
	DetectedGender model.Gender       `json:"detectedGender"`

	Candidates    []model.GarmentCandidate `json:"candidates"`
	SelectedIndex int                      `json:"selectedIndex"` // -1 = 미선택

	ResultImage    []byte `json:"-"`
	ComparisonText string `json:"comparisonText"`

	ErrorTitle   string `json:"errorTitle,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`

	// GenerationToken - 리셋/재시작 시 회전되어 늦게 도착한 비동기 결과를 무효화함
	GenerationToken string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
