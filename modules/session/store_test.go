package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ootd-tryon-server/modules/common/model"
)

func populatedSession(t *testing.T, store *Store, state model.State) string {
	t.Helper()
	sess := store.Create()
	err := store.Update(sess.ID, func(s *Session) {
		s.State = state
		s.PersonImage = model.EncodedImage{Data: []byte("photo"), Width: 800, Height: 600}
		s.Preferences = model.Preferences{Style: "Formal", Colors: "Monochrome", Occasion: "Date Night"}
		s.DetectedGender = model.GenderMale
		s.Candidates = []model.GarmentCandidate{{Image: []byte("g1")}, {Image: []byte("g2")}}
		s.SelectedIndex = 1
		s.ResultImage = []byte("result")
		s.ComparisonText = "Nice."
		s.ErrorTitle = "Could not generate garment images"
	})
	require.NoError(t, err)
	return sess.ID
}

func TestCreate(t *testing.T) {
	store := NewStore(time.Hour)
	sess := store.Create()

	assert.NotEmpty(t, sess.ID)
	assert.NotEmpty(t, sess.GenerationToken)
	assert.Equal(t, model.StateUploadPerson, sess.State)
	assert.Equal(t, model.DefaultPreferences(), sess.Preferences)
	assert.Equal(t, -1, sess.SelectedIndex)
}

func TestGet_Missing(t *testing.T) {
	store := NewStore(time.Hour)
	_, err := store.Get("nope")
	assert.Error(t, err)
}

func TestReset_FromEveryState(t *testing.T) {
	states := []model.State{
		model.StateUploadPerson,
		model.StateSetPreferences,
		model.StateGeneratingGarments,
		model.StateChooseGarment,
		model.StateTryingOn,
		model.StateShowResult,
	}

	for _, state := range states {
		t.Run(string(state), func(t *testing.T) {
			store := NewStore(time.Hour)
			id := populatedSession(t, store, state)

			before, err := store.Get(id)
			require.NoError(t, err)

			require.NoError(t, store.Reset(id))

			after, err := store.Get(id)
			require.NoError(t, err)

			assert.Equal(t, model.StateUploadPerson, after.State)
			assert.Empty(t, after.PersonImage.Data)
			assert.Equal(t, model.DefaultPreferences(), after.Preferences)
			assert.Equal(t, model.GenderUnknown, after.DetectedGender)
			assert.Nil(t, after.Candidates)
			assert.Equal(t, -1, after.SelectedIndex)
			assert.Nil(t, after.ResultImage)
			assert.Empty(t, after.ComparisonText)
			assert.Empty(t, after.ErrorTitle)
			assert.NotEqual(t, before.GenerationToken, after.GenerationToken,
				"reset must rotate the generation token")
		})
	}
}

func TestUpdateIfToken(t *testing.T) {
	store := NewStore(time.Hour)
	sess := store.Create()

	t.Run("current token applies the update", func(t *testing.T) {
		err := store.UpdateIfToken(sess.ID, sess.GenerationToken, func(s *Session) {
			s.DetectedGender = model.GenderFemale
		})
		require.NoError(t, err)

		got, _ := store.Get(sess.ID)
		assert.Equal(t, model.GenderFemale, got.DetectedGender)
	})

	t.Run("stale token is silently dropped", func(t *testing.T) {
		require.NoError(t, store.Reset(sess.ID))

		err := store.UpdateIfToken(sess.ID, sess.GenerationToken, func(s *Session) {
			s.DetectedGender = model.GenderMale
		})
		require.NoError(t, err)

		got, _ := store.Get(sess.ID)
		assert.Equal(t, model.GenderUnknown, got.DetectedGender,
			"update with a pre-reset token must not land")
	})
}

func TestUpdateWithNewToken(t *testing.T) {
	store := NewStore(time.Hour)
	sess := store.Create()

	token, err := store.UpdateWithNewToken(sess.ID, func(s *Session) {
		s.State = model.StateGeneratingGarments
	})
	require.NoError(t, err)
	assert.NotEqual(t, sess.GenerationToken, token, "every attempt gets its own token")

	got, _ := store.Get(sess.ID)
	assert.Equal(t, token, got.GenerationToken)
	assert.Equal(t, model.StateGeneratingGarments, got.State)

	// 회전 전 토큰으로는 더 이상 쓸 수 없음
	err = store.UpdateIfToken(sess.ID, sess.GenerationToken, func(s *Session) {
		s.State = model.StateChooseGarment
	})
	require.NoError(t, err)
	got, _ = store.Get(sess.ID)
	assert.Equal(t, model.StateGeneratingGarments, got.State)

	_, err = store.UpdateWithNewToken("nope", func(s *Session) {})
	assert.Error(t, err)
}

func TestCleanupExpired(t *testing.T) {
	store := NewStore(time.Minute)
	fresh := store.Create()
	stale := store.Create()

	// stale 세션의 갱신 시각을 TTL 너머로 되돌림
	store.mu.Lock()
	store.sessions[stale.ID].UpdatedAt = time.Now().Add(-time.Hour)
	store.mu.Unlock()

	removed := store.CleanupExpired()
	assert.Equal(t, 1, removed)

	_, err := store.Get(stale.ID)
	assert.Error(t, err)
	_, err = store.Get(fresh.ID)
	assert.NoError(t, err)
}
