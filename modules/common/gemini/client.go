package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"ootd-tryon-server/modules/common/config"
)

// NewClient - 설정된 API 키로 genai 클라이언트 생성
func NewClient(ctx context.Context) (*genai.Client, error) {
	cfg := config.GetConfig()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Genai client: %w", err)
	}
	return client, nil
}

// ExtractImage - 응답 candidates에서 첫 InlineData 이미지 추출
func ExtractImage(result *genai.GenerateContentResponse) ([]byte, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, fmt.Errorf("no image data in response")
}

// ExtractText - 응답 candidates에서 텍스트 추출
func ExtractText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	var builder strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				builder.WriteString(part.Text)
			}
		}
		if builder.Len() > 0 {
			break
		}
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", fmt.Errorf("no text in response")
	}
	return text, nil
}

// FloatPtr - float64를 *float32로 변환
func FloatPtr(f float64) *float32 {
	f32 := float32(f)
	return &f32
}
