package profile

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"devhub/internal/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sniffLen = 512

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PictureInput is an uploaded file. Size is the size declared by the
// multipart part.
type PictureInput struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type PictureResult struct {
	ProfileID uuid.UUID
	Filename  string
	URL       string
}

// UploadPicture stores a new picture and attaches it to the caller's profile,
// creating the profile when missing. Size and type are checked before
// anything is written.
func (s *Service) UploadPicture(ctx context.Context, userID uuid.UUID, in PictureInput) (PictureResult, error) {
	if in.Content == nil || in.Size <= 0 {
		return PictureResult{}, ErrInvalidPicture
	}
	if in.Size > s.limits.MaxBytes {
		return PictureResult{}, ErrPictureTooLarge
	}
	if !declaredAsImage(in.ContentType) {
		return PictureResult{}, ErrInvalidPicture
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return PictureResult{}, ErrInvalidPicture
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := extByType[contentType]
	if !ok || !s.allowed(contentType) {
		return PictureResult{}, ErrInvalidPicture
	}

	name := s.newName(ext)
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), in.Content), s.limits.MaxBytes+1)
	if err := s.pictures.Save(ctx, name, contentType, body, in.Size); err != nil {
		s.logger.Error("store picture failed", zap.String("file", name), zap.Error(err))
		return PictureResult{}, errors.Join(ErrInternal, err)
	}

	profileID, previous, err := s.profiles.ReplacePicture(ctx, userID, name)
	if err != nil {
		s.discard(name)
		return PictureResult{}, mapRepoError(err)
	}
	if previous != "" && previous != name {
		s.discard(previous)
	}

	s.changed(ctx, events.ProfileEvent(events.PictureUpdated, userID))
	return PictureResult{ProfileID: profileID, Filename: name, URL: s.pictureURL(name)}, nil
}

// RemovePicture detaches the caller's picture and discards the file.
func (s *Service) RemovePicture(ctx context.Context, userID uuid.UUID) error {
	previous, err := s.profiles.ClearPicture(ctx, userID)
	if err != nil {
		return mapRepoError(err)
	}
	s.discard(previous)
	s.changed(ctx, events.ProfileEvent(events.PictureRemoved, userID))
	return nil
}

// declaredAsImage rejects parts that announce a non-image type. Generic or
// missing declarations are left to content sniffing.
func declaredAsImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.TrimSpace(contentType) == ""
	}
	switch mediaType {
	case "application/octet-stream", "binary/octet-stream":
		return true
	}
	return strings.HasPrefix(mediaType, "image/")
}

func (s *Service) allowed(contentType string) bool {
	for _, t := range s.limits.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
