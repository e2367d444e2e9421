package tryon

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ootd-tryon-server/modules/common/fallback"
	"ootd-tryon-server/modules/common/model"
	"ootd-tryon-server/modules/common/utils"
)

type fakeGateway struct {
	composite    []byte
	compositeErr error

	comparison    string
	comparisonErr error
}

func (f *fakeGateway) ClassifyStyle(ctx context.Context, personImage []byte, prompt string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeGateway) GenerateRecommendations(ctx context.Context, prompt string) ([]model.GarmentRecommendation, error) {
	return nil, errors.New("not used")
}

func (f *fakeGateway) SynthesizeImage(ctx context.Context, prompt string, aspectRatio string) ([]byte, error) {
	return nil, errors.New("not used")
}

func (f *fakeGateway) CompositeTryOn(ctx context.Context, personImage, garmentImage []byte, prompt string) ([]byte, error) {
	return f.composite, f.compositeErr
}

func (f *fakeGateway) CompareStyles(ctx context.Context, beforeImage, afterImage []byte, prompt string) (string, error) {
	return f.comparison, f.comparisonErr
}

func (f *fakeGateway) Chat(ctx context.Context, history []model.ChatMessage, systemInstruction string) (string, error) {
	return "", errors.New("not used")
}

func personImage(t *testing.T, width, height int) model.EncodedImage {
	t.Helper()
	data, err := utils.SolidPNG(width, height, 120, 130, 140)
	require.NoError(t, err)
	return model.EncodedImage{Data: data, Width: width, Height: height}
}

func TestComposite(t *testing.T) {
	person := personImage(t, 80, 60)
	garment := []byte("garment")

	t.Run("result keeps the person photo dimensions", func(t *testing.T) {
		// 모델이 제약을 어기고 다른 크기를 돌려준 경우
		oversized, err := utils.SolidPNG(160, 120, 1, 2, 3)
		require.NoError(t, err)

		svc := NewService(&fakeGateway{composite: oversized})
		out, err := svc.Composite(context.Background(), person, garment)
		require.NoError(t, err)

		width, height, err := utils.DecodeDimensions(out)
		require.NoError(t, err)
		assert.Equal(t, 80, width)
		assert.Equal(t, 60, height)
	})

	t.Run("matching result passes through unchanged", func(t *testing.T) {
		exact, err := utils.SolidPNG(80, 60, 1, 2, 3)
		require.NoError(t, err)

		svc := NewService(&fakeGateway{composite: exact})
		out, err := svc.Composite(context.Background(), person, garment)
		require.NoError(t, err)
		assert.Equal(t, exact, out)
	})

	t.Run("gateway error carries the try-on title", func(t *testing.T) {
		svc := NewService(&fakeGateway{compositeErr: errors.New("refused")})
		_, err := svc.Composite(context.Background(), person, garment)
		require.Error(t, err)

		var ue *model.UserError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, model.ErrTitleTryOn, ue.Title)
	})

	t.Run("missing image is the same failure class", func(t *testing.T) {
		svc := NewService(&fakeGateway{composite: nil})
		_, err := svc.Composite(context.Background(), person, garment)
		require.Error(t, err)

		var ue *model.UserError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, model.ErrTitleTryOn, ue.Title)
	})

	t.Run("undecodable payload is the same failure class", func(t *testing.T) {
		svc := NewService(&fakeGateway{composite: []byte("not a png")})
		_, err := svc.Composite(context.Background(), person, garment)
		require.Error(t, err)

		var ue *model.UserError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, model.ErrTitleTryOn, ue.Title)
	})
}

func TestCompare(t *testing.T) {
	before := []byte("before")
	after := []byte("after")

	t.Run("model text passes through", func(t *testing.T) {
		svc := NewService(&fakeGateway{comparison: "The new shirt sharpens the whole outfit."})
		assert.Equal(t, "The new shirt sharpens the whole outfit.",
			svc.Compare(context.Background(), before, after))
	})

	t.Run("errors fall back to the fixed sentence", func(t *testing.T) {
		svc := NewService(&fakeGateway{comparisonErr: errors.New("timeout")})
		assert.Equal(t, fallback.ComparisonSentence, svc.Compare(context.Background(), before, after))
	})

	t.Run("empty text falls back to the fixed sentence", func(t *testing.T) {
		svc := NewService(&fakeGateway{comparison: ""})
		assert.Equal(t, fallback.ComparisonSentence, svc.Compare(context.Background(), before, after))
	})
}
