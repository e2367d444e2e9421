package gender

// BuildClassifyPrompt - 스타일링 단서만 보고 분류하는 프롬프트
// 응답 스키마는 gateway 쪽에서 {gender: Male|Female|Unknown}으로 고정됨
func BuildClassifyPrompt() string {
	return "[STYLING CLASSIFICATION TASK]\n" +
		"Look at the person in the provided photo and classify the STYLING PRESENTATION of their look.\n" +
		"Base your answer ONLY on styling cues: hairstyle, clothing cut and fit, accessories, grooming.\n" +
		"Do NOT attempt to judge biological or physical attributes.\n\n" +
		"[TIE-BREAK RULE]\n" +
		"If the styling is ambiguous, answer with whichever presentation the styling LEANS toward.\n" +
		"Answer \"Unknown\" ONLY when the styling is fully indeterminate and leans neither way.\n\n" +
		"[OUTPUT]\n" +
		"Return a JSON object with a single \"gender\" field set to exactly one of: Male, Female, Unknown."
}
