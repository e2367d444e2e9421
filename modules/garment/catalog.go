package garment

// OccasionOutfit - occasion별 의상 타입/원단 설정
type OccasionOutfit struct {
	GarmentType string
	Fabric      string
	Sporty      bool // true면 sporty/casual 문구, false면 refined 문구
}

// DefaultOccasionKey - 매핑되지 않은 occasion이 떨어지는 항목 이름
const DefaultOccasionKey = "Default"

// occasionCatalog - occasion → 의상 타입/원단 결정 테이블
var occasionCatalog = map[string]OccasionOutfit{
	"Everyday": {
		GarmentType: "comfortable crew-neck cotton tee",
		Fabric:      "soft breathable cotton jersey",
		Sporty:      true,
	},
	"Office / Work": {
		GarmentType: "professional oxford button-down dress shirt",
		Fabric:      "crisp cotton oxford weave",
		Sporty:      false,
	},
	"Date Night": {
		GarmentType: "sleek fitted evening top",
		Fabric:      "smooth lustrous satin blend",
		Sporty:      false,
	},
	"Party / Night Out": {
		GarmentType: "statement going-out top",
		Fabric:      "shimmering textured knit",
		Sporty:      false,
	},
	"Workout / Active": {
		GarmentType: "moisture-wicking athletic training top",
		Fabric:      "lightweight performance mesh",
		Sporty:      true,
	},
	"Beach / Vacation": {
		GarmentType: "breezy short-sleeve resort shirt",
		Fabric:      "airy linen blend",
		Sporty:      true,
	},
	"Wedding Guest": {
		GarmentType: "refined dress shirt with a subtle sheen",
		Fabric:      "fine twill with a subtle sheen",
		Sporty:      false,
	},
	DefaultOccasionKey: {
		GarmentType: "versatile everyday top",
		Fabric:      "medium-weight cotton blend",
		Sporty:      true,
	},
}

// LookupOccasion - 테이블 조회, 미등록 occasion은 기본 항목으로
func LookupOccasion(occasion string) OccasionOutfit {
	if outfit, ok := occasionCatalog[occasion]; ok {
		return outfit
	}
	return occasionCatalog[DefaultOccasionKey]
}

// paletteTerms - 컬러 팔레트 → primary/secondary/tertiary 색 용어
var paletteTerms = map[string][3]string{
	"Neutral Tones": {"beige", "charcoal gray", "off-white"},
	"Warm Tones":    {"terracotta", "mustard yellow", "burnt orange"},
	"Cool Tones":    {"navy blue", "teal", "slate blue"},
	"Pastels":       {"soft pink", "mint green", "lavender"},
	"Bold & Bright": {"crimson red", "cobalt blue", "vivid yellow"},
	"Monochrome":    {"black", "white", "heather gray"},
}

// PaletteTerms - 팔레트별 색 용어 3종, 미등록 팔레트는 무난한 기본값
func PaletteTerms(palette string) [3]string {
	if terms, ok := paletteTerms[palette]; ok {
		return terms
	}
	return [3]string{"muted tone", "contrasting tone", "accent tone"}
}

// sportyStyles - refined 계열이 아닌 스타일 어휘
var sportyStyles = map[string]bool{
	"Casual":     true,
	"Sporty":     true,
	"Streetwear": true,
}

// IsSportyCasual - occasion 설정이나 스타일 어느 쪽이든 캐주얼이면 true
func IsSportyCasual(style string, outfit OccasionOutfit) bool {
	return outfit.Sporty || sportyStyles[style]
}
