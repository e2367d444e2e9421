package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG 디코더 등록
	"image/png"
	"log"
	"math"
	"strings"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	_ "golang.org/x/image/webp" // WebP 디코더 등록
)

// 고정 aspect-ratio 후보군 - 이미지 생성 요청에 허용되는 비율
var aspectRatioCandidates = []struct {
	Name  string
	Value float64
}{
	{"1:1", 1.0},
	{"4:3", 4.0 / 3.0},
	{"3:4", 3.0 / 4.0},
	{"16:9", 16.0 / 9.0},
	{"9:16", 9.0 / 16.0},
}

// EncodeBase64 - 이미지 바이너리를 base64로 변환
func EncodeBase64(imageData []byte) string {
	return base64.StdEncoding.EncodeToString(imageData)
}

// DecodeBase64 - base64 페이로드를 바이너리로 변환 (data URL prefix 허용)
func DecodeBase64(payload string) ([]byte, error) {
	payload = StripDataURLPrefix(strings.TrimSpace(payload))
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return data, nil
}

// StripDataURLPrefix - "data:image/png;base64," 같은 prefix 제거
func StripDataURLPrefix(value string) string {
	if !strings.HasPrefix(value, "data:") {
		return value
	}
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		return value[idx+1:]
	}
	return value
}

// DecodeDimensions - 픽셀 크기만 빠르게 추출 (PNG/JPEG/WebP 자동 감지)
func DecodeDimensions(imageData []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image dimensions: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// NearestAspectRatio - 실제 비율과의 차가 최소인 후보 선택
// 예: 1080x1440 (0.75) → "3:4"
func NearestAspectRatio(width, height int) string {
	if width <= 0 || height <= 0 {
		return "1:1"
	}

	actual := float64(width) / float64(height)
	best := aspectRatioCandidates[0].Name
	bestDiff := math.Abs(actual - aspectRatioCandidates[0].Value)

	for _, candidate := range aspectRatioCandidates[1:] {
		diff := math.Abs(actual - candidate.Value)
		if diff < bestDiff {
			best = candidate.Name
			bestDiff = diff
		}
	}
	return best
}

// MirrorHorizontal - 카메라 캡처 프레임 좌우 반전
func MirrorHorizontal(imageData []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode capture frame: %w", err)
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			dst.Set(bounds.Dx()-1-x, y, src.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}

	return EncodePNG(dst)
}

// ResizeExact - 지정 크기로 늘려 맞춤 (합성 결과의 치수 고정용)
func ResizeExact(src image.Image, targetWidth, targetHeight int) image.Image {
	srcBounds := src.Bounds()
	srcWidth := srcBounds.Dx()
	srcHeight := srcBounds.Dy()

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))

	// Nearest Neighbor 방식으로 리사이즈
	for y := 0; y < targetHeight; y++ {
		for x := 0; x < targetWidth; x++ {
			srcX := x * srcWidth / targetWidth
			srcY := y * srcHeight / targetHeight
			dst.Set(x, y, src.At(srcBounds.Min.X+srcX, srcBounds.Min.Y+srcY))
		}
	}

	return dst
}

// NormalizeToDimensions - 디코드 후 치수가 다르면 ResizeExact로 맞춤
// 합성 결과는 원본 인물 사진과 정확히 같은 크기여야 함
func NormalizeToDimensions(imageData []byte, targetWidth, targetHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode composited image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == targetWidth && bounds.Dy() == targetHeight {
		return imageData, nil
	}

	log.Printf("⚠️  Composited image is %dx%d, resizing to %dx%d",
		bounds.Dx(), bounds.Dy(), targetWidth, targetHeight)

	return EncodePNG(ResizeExact(img, targetWidth, targetHeight))
}

// EncodePNG - image.Image를 PNG 바이너리로 인코딩
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// ConvertPNGToWebP - PNG 바이너리를 WebP로 변환
func ConvertPNGToWebP(pngData []byte, quality float32) ([]byte, error) {
	pngReader := bytes.NewReader(pngData)
	img, err := png.Decode(pngReader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	err = webp.Encode(&webpBuffer, img, options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	webpData := webpBuffer.Bytes()

	log.Printf("✅ PNG converted to WebP: %d bytes → %d bytes (%.1f%% reduction)",
		len(pngData), len(webpData),
		float64(len(pngData)-len(webpData))/float64(len(pngData))*100)

	return webpData, nil
}

// SolidPNG - 단색 테스트 이미지 생성 (도구/시드용)
func SolidPNG(width, height int, r, g, b uint8) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = b
			img.Pix[i+3] = 0xff
		}
	}
	return EncodePNG(img)
}
