package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ootd-tryon-server/modules/common/fallback"
	"ootd-tryon-server/modules/common/model"
	"ootd-tryon-server/modules/common/utils"
	"ootd-tryon-server/modules/garment"
	"ootd-tryon-server/modules/gender"
	"ootd-tryon-server/modules/session"
	"ootd-tryon-server/modules/tryon"
)

// scriptedGateway - 시나리오 주입용 게이트웨이
type scriptedGateway struct {
	mu sync.Mutex

	classification string
	classifyErr    error

	recs    []model.GarmentRecommendation
	recsErr error

	image    []byte
	imageErr error

	composite    []byte
	compositeErr error

	comparison    string
	comparisonErr error

	seenAspectRatios []string
}

func (f *scriptedGateway) ClassifyStyle(ctx context.Context, personImage []byte, prompt string) (string, error) {
	return f.classification, f.classifyErr
}

func (f *scriptedGateway) GenerateRecommendations(ctx context.Context, prompt string) ([]model.GarmentRecommendation, error) {
	return f.recs, f.recsErr
}

func (f *scriptedGateway) SynthesizeImage(ctx context.Context, prompt string, aspectRatio string) ([]byte, error) {
	f.mu.Lock()
	f.seenAspectRatios = append(f.seenAspectRatios, aspectRatio)
	f.mu.Unlock()
	return f.image, f.imageErr
}

func (f *scriptedGateway) CompositeTryOn(ctx context.Context, personImage, garmentImage []byte, prompt string) ([]byte, error) {
	return f.composite, f.compositeErr
}

func (f *scriptedGateway) CompareStyles(ctx context.Context, beforeImage, afterImage []byte, prompt string) (string, error) {
	return f.comparison, f.comparisonErr
}

func (f *scriptedGateway) Chat(ctx context.Context, history []model.ChatMessage, systemInstruction string) (string, error) {
	return "", errors.New("not used")
}

func newTestService(gw *scriptedGateway) (*Service, *session.Store) {
	store := session.NewStore(time.Hour)
	svc := NewService(store,
		gender.NewService(gw),
		garment.NewService(gw),
		tryon.NewService(gw),
		nil, nil)
	return svc, store
}

func happyGateway(t *testing.T) *scriptedGateway {
	t.Helper()
	garmentPNG, err := utils.SolidPNG(10, 10, 50, 60, 70)
	require.NoError(t, err)
	compositePNG, err := utils.SolidPNG(800, 600, 80, 90, 100)
	require.NoError(t, err)

	return &scriptedGateway{
		classification: "Male",
		recs: []model.GarmentRecommendation{
			{ItemName: "Beige Oxford", StyleCategory: "Formal", Description: "Crisp."},
			{ItemName: "Charcoal Oxford", StyleCategory: "Formal", Description: "Dark."},
			{ItemName: "Patterned Oxford", StyleCategory: "Formal", Description: "Bold."},
		},
		image:      garmentPNG,
		composite:  compositePNG,
		comparison: "The oxford sharpens the whole look.",
	}
}

func officePrefs() model.Preferences {
	return model.Preferences{Style: "Formal", Colors: "Neutral Tones", Occasion: "Office / Work"}
}

func TestFullFlow(t *testing.T) {
	gw := happyGateway(t)
	svc, _ := newTestService(gw)

	photo, err := utils.SolidPNG(800, 600, 10, 20, 30)
	require.NoError(t, err)

	created := svc.CreateSession()
	sess, err := svc.StartSession(context.Background(), created.ID, photo, false)
	require.NoError(t, err)
	assert.Equal(t, model.StateSetPreferences, sess.State)
	assert.Equal(t, 800, sess.PersonImage.Width)
	assert.Equal(t, 600, sess.PersonImage.Height)

	// 백그라운드 성별 추론이 반영될 때까지 대기
	require.Eventually(t, func() bool {
		got, err := svc.GetSession(created.ID)
		return err == nil && got.DetectedGender == model.GenderMale
	}, 2*time.Second, 10*time.Millisecond)

	sess, err = svc.SetPreferences(context.Background(), created.ID,
		model.Preferences{Style: "Casual", Colors: "Neutral Tones", Occasion: "Office / Work"})
	require.NoError(t, err)
	assert.Equal(t, model.StateChooseGarment, sess.State)
	require.Len(t, sess.Candidates, 3)
	assert.Equal(t, "Beige Oxford", sess.Candidates[0].Recommendation.ItemName)

	// 800x600은 4:3 생성 비율로 이어져야 함
	gw.mu.Lock()
	for _, ratio := range gw.seenAspectRatios {
		assert.Equal(t, "4:3", ratio)
	}
	gw.mu.Unlock()

	sess, err = svc.SelectGarment(created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.SelectedIndex)

	sess, err = svc.TryOn(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateShowResult, sess.State)
	assert.Equal(t, "The oxford sharpens the whole look.", sess.ComparisonText)

	width, height, err := utils.DecodeDimensions(sess.ResultImage)
	require.NoError(t, err)
	assert.Equal(t, 800, width)
	assert.Equal(t, 600, height)
}

func TestSetPreferences_InvalidVocabulary(t *testing.T) {
	svc, _ := newTestService(happyGateway(t))
	created := svc.CreateSession()

	photo, err := utils.SolidPNG(800, 600, 1, 2, 3)
	require.NoError(t, err)
	_, err = svc.StartSession(context.Background(), created.ID, photo, false)
	require.NoError(t, err)

	_, err = svc.SetPreferences(context.Background(), created.ID,
		model.Preferences{Style: "Cyberpunk'; DROP TABLE", Colors: "Neutral Tones", Occasion: "Everyday"})
	require.Error(t, err)

	var ve *model.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSetPreferences_RequiresPersonPhoto(t *testing.T) {
	svc, store := newTestService(happyGateway(t))
	created := svc.CreateSession()

	_, err := svc.SetPreferences(context.Background(), created.ID, officePrefs())
	require.Error(t, err)

	sess, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateUploadPerson, sess.State, "rejected preferences must not advance the session")
	assert.Nil(t, sess.Candidates)
}

func TestSetPreferences_RejectedDuringTryOn(t *testing.T) {
	svc, store := newTestService(happyGateway(t))

	created := svc.CreateSession()
	photo, err := utils.SolidPNG(800, 600, 1, 2, 3)
	require.NoError(t, err)
	_, err = svc.StartSession(context.Background(), created.ID, photo, false)
	require.NoError(t, err)

	require.NoError(t, store.Update(created.ID, func(sess *session.Session) {
		sess.State = model.StateTryingOn
	}))

	_, err = svc.SetPreferences(context.Background(), created.ID, officePrefs())
	require.Error(t, err)

	sess, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateTryingOn, sess.State)
}

func TestSetPreferences_ResubmissionInvalidatesEarlierAttempt(t *testing.T) {
	gw := happyGateway(t)
	svc, store := newTestService(gw)

	created := svc.CreateSession()
	photo, err := utils.SolidPNG(800, 600, 1, 2, 3)
	require.NoError(t, err)
	_, err = svc.StartSession(context.Background(), created.ID, photo, false)
	require.NoError(t, err)

	before, err := store.Get(created.ID)
	require.NoError(t, err)
	staleToken := before.GenerationToken

	sess, err := svc.SetPreferences(context.Background(), created.ID, officePrefs())
	require.NoError(t, err)
	assert.Equal(t, model.StateChooseGarment, sess.State)
	assert.Equal(t, "Beige Oxford", sess.Candidates[0].Recommendation.ItemName)

	after, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, staleToken, after.GenerationToken, "each submission starts a fresh generation attempt")

	// 이전 시도의 늦은 완료를 흉내냄 - 최신 후보를 덮어쓰면 안 됨
	gw.recs = []model.GarmentRecommendation{
		{ItemName: "Stale Parka", StyleCategory: "Casual", Description: "Late."},
		{ItemName: "Stale Hoodie", StyleCategory: "Casual", Description: "Late."},
		{ItemName: "Stale Vest", StyleCategory: "Casual", Description: "Late."},
	}
	svc.GenerateCandidates(context.Background(), created.ID, staleToken)

	final, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateChooseGarment, final.State)
	assert.Equal(t, "Beige Oxford", final.Candidates[0].Recommendation.ItemName)
}

func TestSetPreferences_RecommendationFailureReverts(t *testing.T) {
	gw := happyGateway(t)
	gw.recsErr = errors.New("model unavailable")
	svc, _ := newTestService(gw)

	created := svc.CreateSession()
	photo, err := utils.SolidPNG(800, 600, 1, 2, 3)
	require.NoError(t, err)
	_, err = svc.StartSession(context.Background(), created.ID, photo, false)
	require.NoError(t, err)

	sess, err := svc.SetPreferences(context.Background(), created.ID, officePrefs())
	require.NoError(t, err)

	assert.Equal(t, model.StateSetPreferences, sess.State, "failure must revert to preference entry")
	assert.Nil(t, sess.Candidates, "partial image results must be discarded")
	assert.Equal(t, model.ErrTitleGarmentDetails, sess.ErrorTitle)
}

func TestSetPreferences_ImageBatchFailureReverts(t *testing.T) {
	gw := happyGateway(t)
	gw.image = nil
	gw.imageErr = errors.New("filtered")
	svc, _ := newTestService(gw)

	created := svc.CreateSession()
	photo, err := utils.SolidPNG(800, 600, 1, 2, 3)
	require.NoError(t, err)
	_, err = svc.StartSession(context.Background(), created.ID, photo, false)
	require.NoError(t, err)

	sess, err := svc.SetPreferences(context.Background(), created.ID, officePrefs())
	require.NoError(t, err)

	assert.Equal(t, model.StateSetPreferences, sess.State)
	assert.Equal(t, model.ErrTitleGarmentImages, sess.ErrorTitle)
}

func TestSetPreferences_MetadataShortfallUsesPositionalLabels(t *testing.T) {
	gw := happyGateway(t)
	gw.recs = gw.recs[:1]
	svc, _ := newTestService(gw)

	created := svc.CreateSession()
	photo, err := utils.SolidPNG(800, 600, 1, 2, 3)
	require.NoError(t, err)
	_, err = svc.StartSession(context.Background(), created.ID, photo, false)
	require.NoError(t, err)

	sess, err := svc.SetPreferences(context.Background(), created.ID, officePrefs())
	require.NoError(t, err)

	require.Len(t, sess.Candidates, 3)
	assert.Equal(t, "Beige Oxford", sess.Candidates[0].Recommendation.ItemName)
	assert.Equal(t, fallback.PositionalLabel(1), sess.Candidates[1].Recommendation.ItemName)
	assert.Equal(t, fallback.PositionalLabel(2), sess.Candidates[2].Recommendation.ItemName)
}

func TestTryOn_CompositeFailureRevertsToChoice(t *testing.T) {
	gw := happyGateway(t)
	svc, _ := newTestService(gw)

	created := svc.CreateSession()
	photo, err := utils.SolidPNG(800, 600, 1, 2, 3)
	require.NoError(t, err)
	_, err = svc.StartSession(context.Background(), created.ID, photo, false)
	require.NoError(t, err)
	_, err = svc.SetPreferences(context.Background(), created.ID, officePrefs())
	require.NoError(t, err)
	_, err = svc.SelectGarment(created.ID, 0)
	require.NoError(t, err)

	gw.composite = nil
	gw.compositeErr = errors.New("refused")

	sess, err := svc.TryOn(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateChooseGarment, sess.State, "failed try-on returns to garment choice")
	assert.Equal(t, model.ErrTitleTryOn, sess.ErrorTitle)
	assert.Nil(t, sess.ResultImage)
}

func TestTryOn_ComparisonFailureIsAbsorbed(t *testing.T) {
	gw := happyGateway(t)
	gw.comparison = ""
	gw.comparisonErr = errors.New("timeout")
	svc, _ := newTestService(gw)

	created := svc.CreateSession()
	photo, err := utils.SolidPNG(800, 600, 1, 2, 3)
	require.NoError(t, err)
	_, err = svc.StartSession(context.Background(), created.ID, photo, false)
	require.NoError(t, err)
	_, err = svc.SetPreferences(context.Background(), created.ID, officePrefs())
	require.NoError(t, err)
	_, err = svc.SelectGarment(created.ID, 0)
	require.NoError(t, err)

	sess, err := svc.TryOn(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateShowResult, sess.State)
	assert.Equal(t, fallback.ComparisonSentence, sess.ComparisonText)
}

func TestTryOn_RequiresSelection(t *testing.T) {
	svc, _ := newTestService(happyGateway(t))

	created := svc.CreateSession()
	photo, err := utils.SolidPNG(800, 600, 1, 2, 3)
	require.NoError(t, err)
	_, err = svc.StartSession(context.Background(), created.ID, photo, false)
	require.NoError(t, err)
	_, err = svc.SetPreferences(context.Background(), created.ID, officePrefs())
	require.NoError(t, err)

	_, err = svc.TryOn(context.Background(), created.ID)
	assert.Error(t, err)
}

func TestSelectGarment_Gating(t *testing.T) {
	svc, _ := newTestService(happyGateway(t))
	created := svc.CreateSession()

	_, err := svc.SelectGarment(created.ID, 0)
	assert.Error(t, err, "selection is only valid while choosing a garment")
}

func TestReset_RotatesToken(t *testing.T) {
	gw := happyGateway(t)
	svc, store := newTestService(gw)

	created := svc.CreateSession()
	photo, err := utils.SolidPNG(800, 600, 1, 2, 3)
	require.NoError(t, err)
	_, err = svc.StartSession(context.Background(), created.ID, photo, false)
	require.NoError(t, err)

	before, err := store.Get(created.ID)
	require.NoError(t, err)

	sess, err := svc.Reset(created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateUploadPerson, sess.State)

	after, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.GenerationToken, after.GenerationToken)
}

func TestStartSession_Mirrored(t *testing.T) {
	svc, _ := newTestService(happyGateway(t))
	created := svc.CreateSession()

	photo, err := utils.SolidPNG(640, 480, 1, 2, 3)
	require.NoError(t, err)

	sess, err := svc.StartSession(context.Background(), created.ID, photo, true)
	require.NoError(t, err)
	assert.Equal(t, 640, sess.PersonImage.Width)
	assert.Equal(t, 480, sess.PersonImage.Height)
}
