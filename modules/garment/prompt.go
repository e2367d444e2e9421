package garment

import (
	"fmt"

	"ootd-tryon-server/modules/common/model"
)

// genderCut - 해석된 gender → 컷 문구
func genderCut(gender model.Gender) string {
	switch gender {
	case model.GenderMale:
		return "men's cut"
	case model.GenderFemale:
		return "women's cut"
	default:
		return "unisex cut"
	}
}

// BuildRecommendationPrompt - 의상 메타데이터 3건 생성 프롬프트
// 세 레코드가 각각 다른 색/패턴 축을 쓰도록 다양성 제약을 문장으로 강제함
func BuildRecommendationPrompt(prefs model.Preferences, gender model.Gender) string {
	outfit := LookupOccasion(prefs.Occasion)
	terms := PaletteTerms(prefs.Colors)

	return fmt.Sprintf("[FASHION STYLIST TASK]\n"+
		"You are a professional fashion stylist. Recommend EXACTLY 3 garments for this client.\n\n"+
		"[CLIENT PROFILE]\n"+
		"- Style preference: %s\n"+
		"- Color palette: %s\n"+
		"- Occasion: %s\n"+
		"- Presentation: %s (%s)\n"+
		"- Garment type to work with: %s (%s)\n\n"+
		"[MANDATORY DIVERSITY CONSTRAINTS]\n"+
		"1. Item 1 MUST use the palette's primary color (%s) in a standard fabric.\n"+
		"2. Item 2 MUST use the secondary, contrasting color (%s) AND a visibly different texture.\n"+
		"3. Item 3 MUST use a third color (%s) OR a pattern from the palette, with a distinct cut.\n"+
		"Each of the 3 items must be clearly distinguishable from the other two at a glance.\n\n"+
		"[OUTPUT]\n"+
		"Return a JSON array of EXACTLY 3 objects, each with fields:\n"+
		"itemName (short product name), styleCategory (one of the style vocabulary words), "+
		"description (1-2 sentences a shopper would read).",
		prefs.Style, prefs.Colors, prefs.Occasion,
		gender, genderCut(gender),
		outfit.GarmentType, outfit.Fabric,
		terms[0], terms[1], terms[2])
}

// BuildImagePrompts - 서로 시각적으로 구분되는 프롬프트 3종
// variant 1: 단색 primary 베이스라인
// variant 2: 패턴/컬러블록
// variant 3: 독특한 컷
func BuildImagePrompts(prefs model.Preferences, gender model.Gender) []string {
	outfit := LookupOccasion(prefs.Occasion)
	terms := PaletteTerms(prefs.Colors)
	cut := genderCut(gender)

	// sporty/casual vs refined 문구 분기
	var tone string
	if IsSportyCasual(prefs.Style, outfit) {
		tone = "Relaxed, sporty-casual presentation: easy silhouette, soft drape, everyday wearability."
	} else {
		tone = "Refined, polished presentation: tailored silhouette, clean pressed lines, elevated finish."
	}

	variants := []string{
		fmt.Sprintf("A %s in solid %s, made of %s, %s. %s", outfit.GarmentType, terms[0], outfit.Fabric, cut, tone),
		fmt.Sprintf("A %s featuring a %s and %s pattern or color-block design, visibly different texture from a plain weave, %s. %s",
			outfit.GarmentType, terms[1], terms[0], cut, tone),
		fmt.Sprintf("A %s in %s with a unique, distinctive cut (asymmetric detail, unusual collar, or statement sleeve), %s. %s",
			outfit.GarmentType, terms[2], cut, tone),
	}

	prompts := make([]string, 0, len(variants))
	for _, variant := range variants {
		prompts = append(prompts, variant+"\n\n"+productShotConstraints())
	}
	return prompts
}

// productShotConstraints - 고스트 마네킹/플랫레이 제품 샷 공통 제약
func productShotConstraints() string {
	return "[PRODUCT SHOT REQUIREMENTS]\n" +
		"✓ Exactly ONE isolated garment, ghost-mannequin or flat-lay product photography\n" +
		"✓ Plain, even, light background with soft studio lighting\n" +
		"✓ Top garment only - no pants, no shoes, no accessories\n" +
		"✓ The garment fills most of the frame, fully visible, front-facing\n\n" +
		"[ABSOLUTELY FORBIDDEN]\n" +
		"❌ NO human body parts - no hands, arms, neck, face, or mannequin heads\n" +
		"❌ NO multiple garments or outfit combinations in one frame\n" +
		"❌ NO text, labels, watermarks, or price tags\n" +
		"❌ NO busy or scenic backgrounds"
}
