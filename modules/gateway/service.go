package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"google.golang.org/genai"

	"ootd-tryon-server/modules/common/config"
	geminiclient "ootd-tryon-server/modules/common/gemini"
	"ootd-tryon-server/modules/common/model"
)

type Service struct {
	genaiClient *genai.Client
}

func NewService() *Service {
	ctx := context.Background()
	client, err := geminiclient.NewClient(ctx)
	if err != nil {
		log.Printf("❌ [Gateway] Failed to create Genai client: %v", err)
		return nil
	}

	log.Println("✅ [Gateway] Service initialized")
	return &Service{
		genaiClient: client,
	}
}

// genderSchema - 3값 enum으로 제한된 분류 응답 스키마
var genderSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"gender": {
			Type: genai.TypeString,
			Enum: []string{"Male", "Female", "Unknown"},
		},
	},
	Required: []string{"gender"},
}

// recommendationSchema - 의상 메타데이터 배열 스키마
var recommendationSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"itemName":      {Type: genai.TypeString},
			"styleCategory": {Type: genai.TypeString},
			"description":   {Type: genai.TypeString},
		},
		Required: []string{"itemName", "styleCategory", "description"},
	},
}

// ClassifyStyle - 인물 사진 1장으로 구조화 분류 요청
func (s *Service) ClassifyStyle(ctx context.Context, personImage []byte, prompt string) (string, error) {
	cfg := config.GetConfig()

	content := &genai.Content{
		Parts: []*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(personImage, "image/png"),
		},
	}

	result, err := s.genaiClient.Models.GenerateContent(
		ctx,
		cfg.GeminiTextModel,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   genderSchema,
			Temperature:      geminiclient.FloatPtr(0.1),
		},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	text, err := geminiclient.ExtractText(result)
	if err != nil {
		return "", err
	}

	var parsed classifyResult
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return "", fmt.Errorf("failed to parse classification response: %w", err)
	}
	if parsed.Gender == "" {
		return "", fmt.Errorf("missing gender field in response")
	}

	return parsed.Gender, nil
}

// GenerateRecommendations - 스키마 검증된 JSON 배열 요청
func (s *Service) GenerateRecommendations(ctx context.Context, prompt string) ([]model.GarmentRecommendation, error) {
	cfg := config.GetConfig()

	content := &genai.Content{
		Parts: []*genai.Part{
			genai.NewPartFromText(prompt),
		},
	}

	result, err := s.genaiClient.Models.GenerateContent(
		ctx,
		cfg.GeminiTextModel,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   recommendationSchema,
			Temperature:      geminiclient.FloatPtr(0.7),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}

	text, err := geminiclient.ExtractText(result)
	if err != nil {
		return nil, err
	}

	var records []model.GarmentRecommendation
	if err := json.Unmarshal([]byte(text), &records); err != nil {
		return nil, fmt.Errorf("failed to parse recommendations response: %w", err)
	}

	return records, nil
}

// SynthesizeImage - 프롬프트 1건으로 PNG 1장 생성
func (s *Service) SynthesizeImage(ctx context.Context, prompt string, aspectRatio string) ([]byte, error) {
	cfg := config.GetConfig()

	if aspectRatio == "" {
		aspectRatio = "1:1"
	}

	log.Printf("🎨 [Gateway] Synthesizing image (model: %s, ratio: %s, prompt: %d chars)",
		cfg.GeminiImageModel, aspectRatio, len(prompt))

	content := &genai.Content{
		Parts: []*genai.Part{
			genai.NewPartFromText(prompt),
		},
	}

	result, err := s.genaiClient.Models.GenerateContent(
		ctx,
		cfg.GeminiImageModel,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{
				AspectRatio: aspectRatio,
			},
			Temperature: geminiclient.FloatPtr(0.7),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}

	imageData, err := geminiclient.ExtractImage(result)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ [Gateway] Received image: %d bytes", len(imageData))
	return imageData, nil
}

// CompositeTryOn - 인물 + 의상 레퍼런스를 합성 1장으로
func (s *Service) CompositeTryOn(ctx context.Context, personImage, garmentImage []byte, prompt string) ([]byte, error) {
	cfg := config.GetConfig()

	log.Printf("🎨 [Gateway] Compositing try-on (person: %d bytes, garment: %d bytes)",
		len(personImage), len(garmentImage))

	content := &genai.Content{
		Parts: []*genai.Part{
			genai.NewPartFromBytes(personImage, "image/png"),
			genai.NewPartFromBytes(garmentImage, "image/png"),
			genai.NewPartFromText(prompt),
		},
	}

	result, err := s.genaiClient.Models.GenerateContent(
		ctx,
		cfg.GeminiImageModel,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			Temperature: geminiclient.FloatPtr(0.45),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}

	imageData, err := geminiclient.ExtractImage(result)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ [Gateway] Composited image received: %d bytes", len(imageData))
	return imageData, nil
}

// CompareStyles - 합성 전/후 이미지로 한 문장 비교
func (s *Service) CompareStyles(ctx context.Context, beforeImage, afterImage []byte, prompt string) (string, error) {
	cfg := config.GetConfig()

	content := &genai.Content{
		Parts: []*genai.Part{
			genai.NewPartFromBytes(beforeImage, "image/png"),
			genai.NewPartFromBytes(afterImage, "image/png"),
			genai.NewPartFromText(prompt),
		},
	}

	result, err := s.genaiClient.Models.GenerateContent(
		ctx,
		cfg.GeminiTextModel,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			Temperature: geminiclient.FloatPtr(0.7),
		},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	return geminiclient.ExtractText(result)
}

// Chat - 히스토리 전체를 contents로 실어 보내는 대화 요청
func (s *Service) Chat(ctx context.Context, history []model.ChatMessage, systemInstruction string) (string, error) {
	cfg := config.GetConfig()

	var contents []*genai.Content
	for _, msg := range history {
		role := msg.Role
		if role == "" {
			role = "user"
		}
		contents = append(contents, &genai.Content{
			Role: role,
			Parts: []*genai.Part{
				genai.NewPartFromText(msg.Text),
			},
		})
	}

	if len(contents) == 0 {
		return "", fmt.Errorf("empty chat history")
	}

	result, err := s.genaiClient.Models.GenerateContent(
		ctx,
		cfg.GeminiTextModel,
		contents,
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{
					genai.NewPartFromText(systemInstruction),
				},
			},
			Temperature: geminiclient.FloatPtr(0.7),
		},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	return geminiclient.ExtractText(result)
}
