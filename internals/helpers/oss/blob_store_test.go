package helper

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"arcevents_backend/internals/helpers/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	ct, err := ValidateImage(pngBytes(t, 4, 4), 100)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, err = ValidateImage([]byte("definitely not an image"), 100)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = ValidateImage(pngBytes(t, 20, 5), 10)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = ValidateImage(nil, 0)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestGenerateUniqueFilename(t *testing.T) {
	key := GenerateUniqueFilename("/event_receipts/", "my receipt (1).png")
	assert.True(t, strings.HasPrefix(key, "event_receipts/"+time.Now().Format("20060102")+"-"))
	assert.True(t, strings.HasSuffix(key, "-my_receipt_1_.png"))
	assert.NotEqual(t, key, GenerateUniqueFilename("event_receipts", "my receipt (1).png"))
}

func TestMemoryBlobStore(t *testing.T) {
	store := NewMemoryBlobStore()
	ctx := context.Background()

	ref, err := store.Upload(ctx, "arc_events/gala", Upload{Filename: "p.png", Data: []byte{1}})
	require.NoError(t, err)
	assert.True(t, store.Has(ref.Key))
	assert.Contains(t, ref.URL, ref.Key)

	require.NoError(t, ReleaseQuietly(store, ref.Key, time.Second))
	assert.False(t, store.Has(ref.Key))
	assert.Equal(t, []string{ref.Key}, store.Deleted())

	store.FailUploads(errors.New("bucket gone"))
	_, err = store.Upload(ctx, "x", Upload{Filename: "a.png"})
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	store.FailUploads(nil)

	store.SetDelay(time.Second)
	tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = store.Upload(tctx, "x", Upload{Filename: "a.png"})
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	assert.Equal(t, 0, store.Len())
}
