package fallback

import (
	"encoding/base64"
	"log"
	"strconv"
	"strings"
)

const transparentPixelBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mP8/x8AAwMB/6X+ZQAAAABJRU5ErkJggg=="

// ComparisonSentence - 스타일 비교 호출 실패 시 노출되는 고정 문장
const ComparisonSentence = "You look fantastic — this new piece really elevates your whole look!"

var transparentPixelBytes []byte

func init() {
	data, err := base64.StdEncoding.DecodeString(transparentPixelBase64)
	if err != nil {
		log.Printf("⚠️ Failed to decode placeholder pixel: %v", err)
		return
	}
	transparentPixelBytes = data
}

// PlaceholderBytes returns a copy of a 1x1 transparent PNG for slots that have no source image.
func PlaceholderBytes() []byte {
	if len(transparentPixelBytes) == 0 {
		return []byte{}
	}
	out := make([]byte, len(transparentPixelBytes))
	copy(out, transparentPixelBytes)
	return out
}

// SafeString returns a trimmed string or the provided fallback.
func SafeString(value interface{}, fallback string) string {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s != "" {
			return s
		}
	}
	return fallback
}

// PositionalLabel - 메타데이터가 모자란 슬롯에 붙는 위치 기반 라벨
func PositionalLabel(index int) string {
	return "Look " + strconv.Itoa(index+1)
}
