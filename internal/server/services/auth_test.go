package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/logging"
	"github.com/dmitrijs2005/graphpass/internal/server/blobs"
	"github.com/dmitrijs2005/graphpass/internal/server/images"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
	"github.com/dmitrijs2005/graphpass/internal/server/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, raw string) sequence.Sequence {
	t.Helper()
	s, err := sequence.Parse([]byte(raw))
	require.NoError(t, err)
	return s
}

func activeAccount(t *testing.T, f *fixture, seq string) {
	t.Helper()
	ctx := context.Background()
	_, _, err := f.signup.SubmitBasicInfo(ctx, amy, "Amy")
	require.NoError(t, err)
	_, err = f.signup.SubmitImages(ctx, amy, []images.Upload{jpeg("a.jpg"), jpeg("b.jpg")})
	require.NoError(t, err)
	_, err = f.signup.SubmitPasswordSequence(ctx, amy, []byte(seq))
	require.NoError(t, err)
}

// corrupt writes raw text as the stored sequence, bypassing the codec.
func corrupt(t *testing.T, f *fixture, text string) {
	t.Helper()
	_, err := f.repo.Update(context.Background(), amy, func(a *models.Account) error {
		a.GraphicalPassword = text
		return nil
	})
	require.NoError(t, err)
}

func TestLogin_UnknownEmailIsNotFound(t *testing.T) {
	f := newFixture(t, nil)
	activeAccount(t, f, `["00","11"]`)

	for _, raw := range []string{`["00","11"]`, `["x"]`, `[{"image_index":0,"grid":["00"]}]`} {
		_, err := f.auth.Login(context.Background(), "nobody@x.com", parse(t, raw))
		assert.ErrorIs(t, err, common.ErrorNotFound, raw)
		assert.NotErrorIs(t, err, common.ErrorIncorrectPassword)
	}
}

func TestLogin_NilSubmissionNeverMatches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	activeAccount(t, f, `["00","11"]`)

	_, err := f.auth.Login(ctx, "nobody@x.com", nil)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = f.auth.Login(ctx, amy, nil)
	assert.ErrorIs(t, err, common.ErrorIncorrectPassword)

	ok, err := f.auth.VerifyPassword(ctx, amy, nil)
	assert.ErrorIs(t, err, common.ErrorIncorrectPassword)
	assert.False(t, ok)
}

func TestLogin_Structured(t *testing.T) {
	seq := `[{"image_index":0,"grid":["00","01"]},{"image_index":1,"grid":["22"]}]`
	f := newFixture(t, nil)
	activeAccount(t, f, seq)

	name, err := f.auth.Login(context.Background(), amy, parse(t, seq))
	require.NoError(t, err)
	assert.Equal(t, "Amy", name)

	tests := []string{
		`[{"image_index":1,"grid":["00","01"]},{"image_index":1,"grid":["22"]}]`,
		`[{"image_index":0,"grid":["01","00"]},{"image_index":1,"grid":["22"]}]`,
		`[{"image_index":0,"grid":["00","01"]}]`,
		`["00","01","22"]`,
	}
	for _, raw := range tests {
		_, err := f.auth.Login(context.Background(), amy, parse(t, raw))
		assert.ErrorIs(t, err, common.ErrorIncorrectPassword, raw)
	}
}

func TestLogin_CorruptStoredSequence(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, nil)
	f.auth = NewAuthService(f.repo, blobs.InlineStore{}, logging.NewJSON(&buf, slog.LevelDebug))

	_, _, err := f.signup.SubmitBasicInfo(context.Background(), amy, "Amy")
	require.NoError(t, err)

	// no sequence stored yet: nothing to verify against
	_, err = f.auth.Login(context.Background(), amy, parse(t, `["00"]`))
	assert.ErrorIs(t, err, common.ErrorMalformedStoredData)

	corrupt(t, f, `{not json`)
	_, err = f.auth.Login(context.Background(), amy, parse(t, `["00"]`))
	assert.ErrorIs(t, err, common.ErrorMalformedStoredData)
	assert.NotErrorIs(t, err, common.ErrorIncorrectPassword)

	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"email":"a@x.com"`)
}

func TestGetImages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.auth.GetImages(ctx, amy)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, _, err = f.signup.SubmitBasicInfo(ctx, amy, "Amy")
	require.NoError(t, err)
	_, err = f.auth.GetImages(ctx, amy)
	assert.ErrorIs(t, err, common.ErrorNoImagesFound)

	_, err = f.signup.SubmitImages(ctx, amy, []images.Upload{jpeg("b.jpg"), jpeg("a.jpg")})
	require.NoError(t, err)

	imgs, err := f.auth.GetImages(ctx, amy)
	require.NoError(t, err)
	require.Len(t, imgs, 2)
	assert.Equal(t, "b.jpg", imgs[0].Filename)
	assert.Equal(t, "image/jpeg", imgs[0].ContentType)
	assert.Equal(t, []byte("jpeg:b.jpg"), imgs[0].Data)
	assert.EqualValues(t, len("jpeg:b.jpg"), imgs[0].Size)
}

func TestGetImages_MissingBlob(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	f := newFixture(t, store)
	_, _, err := f.signup.SubmitBasicInfo(ctx, amy, "Amy")
	require.NoError(t, err)
	_, err = f.signup.SubmitImages(ctx, amy, []images.Upload{jpeg("a.jpg")})
	require.NoError(t, err)

	store.objects = map[string][]byte{}

	_, err = f.auth.GetImages(ctx, amy)
	assert.ErrorIs(t, err, common.ErrorMalformedStoredData)
}

func TestVerifyPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.auth.VerifyPassword(ctx, amy, parse(t, `["00"]`))
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, _, err = f.signup.SubmitBasicInfo(ctx, amy, "Amy")
	require.NoError(t, err)
	_, err = f.auth.VerifyPassword(ctx, amy, parse(t, `["00"]`))
	assert.ErrorIs(t, err, common.ErrorNotFound, "no password set")

	activeAccount(t, f, `["00","11"]`)

	ok, err := f.auth.VerifyPassword(ctx, amy, parse(t, `["00","11"]`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.auth.VerifyPassword(ctx, amy, parse(t, `["00"]`))
	assert.ErrorIs(t, err, common.ErrorIncorrectPassword)
	assert.False(t, ok)

	corrupt(t, f, `[`)
	_, err = f.auth.VerifyPassword(ctx, amy, parse(t, `["00","11"]`))
	assert.ErrorIs(t, err, common.ErrorMalformedStoredData)
}
