package model

// Gender - 스타일링 단서 기반 추론 결과
type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = "Unknown"
)

// ParseGender - 임의 문자열을 3값 enum으로 정규화
func ParseGender(s string) Gender {
	switch s {
	case string(GenderMale):
		return GenderMale
	case string(GenderFemale):
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// ParseGenderWithDefault - 정규화하되 인식 불가 입력은 Female로 해석
// 구성값(DEFAULT_PRESENTATION) 해석 전용
func ParseGenderWithDefault(s string) Gender {
	switch s {
	case string(GenderMale):
		return GenderMale
	case string(GenderUnknown):
		return GenderUnknown
	default:
		return GenderFemale
	}
}

// Preferences - 한 번의 생성 요청 동안 불변인 사용자 취향
type Preferences struct {
	Style    string `json:"style"`
	Colors   string `json:"colors"`
	Occasion string `json:"occasion"`
}

// 닫힌 어휘 - 프롬프트에 삽입되는 사용자 입력은 이 목록으로만 제한됨
var (
	Styles = []string{"Casual", "Formal", "Sporty", "Streetwear", "Vintage", "Minimalist"}

	ColorPalettes = []string{"Neutral Tones", "Warm Tones", "Cool Tones", "Pastels", "Bold & Bright", "Monochrome"}

	Occasions = []string{"Everyday", "Office / Work", "Date Night", "Party / Night Out", "Workout / Active", "Beach / Vacation", "Wedding Guest"}
)

// DefaultPreferences - 세션 리셋 시 복원되는 기본값
func DefaultPreferences() Preferences {
	return Preferences{
		Style:    "Casual",
		Colors:   "Neutral Tones",
		Occasion: "Everyday",
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Validate - 닫힌 어휘 검증 (프롬프트 인젝션 방지선)
func (p Preferences) Validate() error {
	if !contains(Styles, p.Style) {
		return &ValidationError{Field: "style", Value: p.Style}
	}
	if !contains(ColorPalettes, p.Colors) {
		return &ValidationError{Field: "colors", Value: p.Colors}
	}
	if !contains(Occasions, p.Occasion) {
		return &ValidationError{Field: "occasion", Value: p.Occasion}
	}
	return nil
}

// ValidationError - 어휘 밖 입력
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return "unsupported " + e.Field + ": " + e.Value
}

// EncodedImage - base64 페이로드 + 픽셀 크기
type EncodedImage struct {
	Data   []byte `json:"-"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// GarmentRecommendation - 의상 메타데이터 레코드 (3개 고정 배치)
type GarmentRecommendation struct {
	ItemName      string `json:"itemName"`
	StyleCategory string `json:"styleCategory"`
	Description   string `json:"description"`
}

// GarmentCandidate - 생성된 의상 이미지와 메타데이터 쌍
// 이미지 생성과 메타데이터 생성은 독립 호출이라 개수가 어긋날 수 있고,
// 어긋난 슬롯은 위치 기반 라벨로 채워짐
type GarmentCandidate struct {
	Image          []byte                `json:"-"`
	Recommendation GarmentRecommendation `json:"recommendation"`
}

// Pipeline 상태
type State string

const (
	StateUploadPerson       State = "UPLOAD_PERSON"
	StateSetPreferences     State = "SET_PREFERENCES"
	StateGeneratingGarments State = "GENERATING_GARMENTS"
	StateChooseGarment      State = "CHOOSE_GARMENT"
	StateTryingOn           State = "TRYING_ON"
	StateShowResult         State = "SHOW_RESULT"
)

// 사용자에게 노출되는 에러 타이틀
const (
	ErrTitleGarmentDetails = "Could not get garment details"
	ErrTitleGarmentImages  = "Could not generate garment images"
	ErrTitleTryOn          = "Could not perform the virtual try-on"
)

// UserError - 타이틀과 함께 사용자에게 노출되는 실패
type UserError struct {
	Title string
	Err   error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return e.Title + ": " + e.Err.Error()
	}
	return e.Title
}

func (e *UserError) Unwrap() error { return e.Err }

// NewUserError - 원인 에러를 감싸 타이틀 부착
func NewUserError(title string, err error) *UserError {
	return &UserError{Title: title, Err: err}
}

// ChatMessage - 스타일리스트 채팅 히스토리 항목
type ChatMessage struct {
	Role string `json:"role"` // "user" | "model"
	Text string `json:"text"`
}

// StageEvent - 진행 상황 브로드캐스트 페이로드
type StageEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	State     State  `json:"state"`
	Detail    string `json:"detail,omitempty"`
}
