package tryon

import "fmt"

// BuildCompositePrompt - 가상 피팅 합성 프롬프트
// 출력 크기를 인물 사진 크기로 고정하는 문구가 핵심 제약
func BuildCompositePrompt(width, height int) string {
	return fmt.Sprintf("[VIRTUAL TRY-ON TASK]\n"+
		"The FIRST image is a person. The SECOND image is a garment.\n"+
		"Generate a photorealistic image of the SAME person wearing the garment.\n\n"+
		"[CRITICAL OUTPUT DIMENSIONS]\n"+
		"✓ Output image MUST be exactly %dx%d pixels, identical to the person photo\n"+
		"✓ Same framing, same camera angle, same crop as the person photo\n\n"+
		"[GARMENT REPLACEMENT]\n"+
		"✓ COMPLETELY replace the person's current top with the new garment\n"+
		"✓ The garment must drape naturally on the person's body with realistic folds\n"+
		"✓ Realistic lighting and shadows consistent with the original photo\n\n"+
		"[PRESERVE EXACTLY]\n"+
		"✓ The person's face, hair, skin tone, and body proportions\n"+
		"✓ The person's pose and the original background\n\n"+
		"[ABSOLUTELY FORBIDDEN]\n"+
		"❌ NO pasted-on or sticker-like garment artifacts\n"+
		"❌ NO leftover pieces of the original clothing\n"+
		"❌ NO changes to face, identity, pose, or background\n"+
		"❌ NO text or watermarks", width, height)
}

// BuildComparePrompt - 착용 전/후 비교 한두 문장 생성 프롬프트
func BuildComparePrompt() string {
	return "[STYLE COMPARISON TASK]\n" +
		"The FIRST image is the person before, the SECOND image is the same person wearing a new garment.\n" +
		"Write 1-2 upbeat, encouraging sentences a friendly stylist would say about how the new look improves on the old one.\n\n" +
		"[OUTPUT]\n" +
		"Plain text only. No lists, no headings, no quotation marks."
}
