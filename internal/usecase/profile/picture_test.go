package profile

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"devhub/internal/events"

	"github.com/stretchr/testify/require"
)

func pngInput(size int) PictureInput {
	b := pngBytes(size)
	return PictureInput{
		Filename:    "me.png",
		ContentType: "image/png",
		Size:        int64(len(b)),
		Content:     bytes.NewReader(b),
	}
}

func TestUploadPicture_StoresAndAttaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "Ana", "ana@x.io")

	res, err := f.svc.UploadPicture(ctx, uid, pngInput(2048))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(res.Filename, "profile-"))
	require.True(t, strings.HasSuffix(res.Filename, ".png"))
	require.Equal(t, "http://cdn.test/uploads/profiles/"+res.Filename, res.URL)
	require.True(t, f.pictures.has(res.Filename))

	dev, err := f.svc.Get(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, res.Filename, dev.Profile.Picture)
	require.Equal(t, res.URL, dev.PictureURL)
	require.Equal(t, res.ProfileID, dev.Profile.ID)
	require.Equal(t, []events.Type{events.PictureUpdated}, f.events.types())
}

func TestUploadPicture_ReplacesPrevious(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "Ana", "ana@x.io")

	first, err := f.svc.UploadPicture(ctx, uid, pngInput(100))
	require.NoError(t, err)
	second, err := f.svc.UploadPicture(ctx, uid, pngInput(200))
	require.NoError(t, err)

	require.NotEqual(t, first.Filename, second.Filename)
	require.False(t, f.pictures.has(first.Filename))
	require.True(t, f.pictures.has(second.Filename))
	require.Equal(t, []string{first.Filename}, f.discarder.discarded)
}

func TestUploadPicture_TooLargeWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "Ana", "ana@x.io")

	_, err := f.svc.UploadPicture(ctx, uid, pngInput(6*1024*1024))
	require.ErrorIs(t, err, ErrPictureTooLarge)
	require.Equal(t, 0, f.pictures.count())

	_, err = f.svc.Get(ctx, uid)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, f.events.types())
}

func TestUploadPicture_RejectsNonImages(t *testing.T) {
	f := newFixture(t)
	uid := f.user(t, "Ana", "ana@x.io")

	text := []byte("just some text, not a picture")
	cases := []PictureInput{
		{ContentType: "text/plain", Size: int64(len(text)), Content: bytes.NewReader(text)},
		// declared as an image but the bytes say otherwise
		{ContentType: "image/png", Size: int64(len(text)), Content: bytes.NewReader(text)},
		{ContentType: "image/png", Size: 0, Content: bytes.NewReader(nil)},
		{ContentType: "image/png", Size: 10},
	}
	for _, in := range cases {
		_, err := f.svc.UploadPicture(context.Background(), uid, in)
		require.ErrorIs(t, err, ErrInvalidPicture)
	}
	require.Equal(t, 0, f.pictures.count())
}

func TestUploadPicture_GenericDeclaredTypeIsSniffed(t *testing.T) {
	f := newFixture(t)
	uid := f.user(t, "Ana", "ana@x.io")

	for _, declared := range []string{"application/octet-stream", "", "application/octet-stream; charset=binary"} {
		in := pngInput(1024)
		in.ContentType = declared
		res, err := f.svc.UploadPicture(context.Background(), uid, in)
		require.NoError(t, err, declared)
		require.True(t, strings.HasSuffix(res.Filename, ".png"))
	}

	text := []byte("plain text sent as a binary part")
	_, err := f.svc.UploadPicture(context.Background(), uid, PictureInput{
		ContentType: "application/octet-stream",
		Size:        int64(len(text)),
		Content:     bytes.NewReader(text),
	})
	require.ErrorIs(t, err, ErrInvalidPicture)
}

func TestDeclaredAsImage(t *testing.T) {
	require.True(t, declaredAsImage("image/png"))
	require.True(t, declaredAsImage("IMAGE/JPEG"))
	require.True(t, declaredAsImage("application/octet-stream"))
	require.True(t, declaredAsImage(""))
	require.False(t, declaredAsImage("text/plain"))
	require.False(t, declaredAsImage("application/pdf"))
	require.False(t, declaredAsImage("not a type;;"))
}

func TestUploadPicture_RespectsAllowList(t *testing.T) {
	f := newFixture(t)
	f.svc.limits.AllowedTypes = []string{"image/jpeg"}
	uid := f.user(t, "Ana", "ana@x.io")

	_, err := f.svc.UploadPicture(context.Background(), uid, pngInput(64))
	require.ErrorIs(t, err, ErrInvalidPicture)
}

func TestUploadPicture_DiscardsFileWhenDatabaseFails(t *testing.T) {
	f := newFixture(t)
	uid := f.user(t, "Ana", "ana@x.io")
	f.store.Fail = errors.New("db down")

	_, err := f.svc.UploadPicture(context.Background(), uid, pngInput(64))
	require.ErrorIs(t, err, ErrInternal)
	require.Equal(t, 0, f.pictures.count())
	require.Len(t, f.discarder.discarded, 1)
}

func TestUploadPicture_StorageFailure(t *testing.T) {
	f := newFixture(t)
	uid := f.user(t, "Ana", "ana@x.io")
	f.pictures.err = errors.New("disk full")

	_, err := f.svc.UploadPicture(context.Background(), uid, pngInput(64))
	require.ErrorIs(t, err, ErrInternal)

	_, err = f.svc.Get(context.Background(), uid)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemovePicture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "Ana", "ana@x.io")

	require.ErrorIs(t, f.svc.RemovePicture(ctx, uid), ErrNotFound)

	res, err := f.svc.UploadPicture(ctx, uid, pngInput(64))
	require.NoError(t, err)

	require.NoError(t, f.svc.RemovePicture(ctx, uid))
	require.False(t, f.pictures.has(res.Filename))

	dev, err := f.svc.Get(ctx, uid)
	require.NoError(t, err)
	require.Empty(t, dev.Profile.Picture)
	require.Empty(t, dev.PictureURL)

	require.ErrorIs(t, f.svc.RemovePicture(ctx, uid), ErrNoPicture)
}
