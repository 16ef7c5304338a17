package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/civicsafe/civicsafe-api/internal/domain/user"
	"github.com/civicsafe/civicsafe-api/internal/pkg/imaging"
	"github.com/civicsafe/civicsafe-api/internal/pkg/logger"
	"github.com/civicsafe/civicsafe-api/internal/pkg/storage"
)

// ErrUndecodableImage is returned for files that pass the type check but cannot be decoded
var ErrUndecodableImage = errors.New("image could not be decoded")

// Evidence is a stored report photo
type Evidence struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// Service validates, downscales and stores evidence images
type Service struct {
	storage   storage.Storage
	processor *imaging.Processor
	now       func() time.Time
}

// NewService creates upload service
func NewService(store storage.Storage, processor *imaging.Processor) *Service {
	if processor == nil {
		processor = imaging.NewProcessor(imaging.DefaultConfig())
	}
	return &Service{
		storage:   store,
		processor: processor,
		now:       time.Now,
	}
}

// UploadEvidence stores an image under evidence/<yyyy>/<mm>/<uuid>.<ext>.
// caller may be nil for anonymous reporters.
func (s *Service) UploadEvidence(ctx context.Context, file io.Reader, caller *user.Identity) (*Evidence, error) {
	data, mimeType, err := storage.ValidateFile(file, storage.CategoryEvidence)
	if err != nil {
		return nil, err
	}

	img, err := s.processor.Fit(data, mimeType)
	if err != nil {
		if errors.Is(err, imaging.ErrUndecodable) {
			return nil, ErrUndecodableImage
		}
		return nil, err
	}

	now := s.now().UTC()
	key := fmt.Sprintf("%s/%04d/%02d/%s%s",
		storage.CategoryEvidence, now.Year(), int(now.Month()), uuid.NewString(), storage.GetExtensionForMime(img.ContentType))

	if err := s.storage.Put(ctx, key, bytes.NewReader(img.Data), img.ContentType); err != nil {
		return nil, fmt.Errorf("store evidence: %w", err)
	}

	uploader := "anonymous"
	if caller != nil {
		uploader = caller.AccountID.String()
	}
	logger.LogInfo(ctx, "Evidence uploaded",
		"key", key,
		"size", len(img.Data),
		"resized", img.Resized,
		"uploader", uploader,
	)

	return &Evidence{
		Key:         key,
		URL:         s.storage.GetURL(key),
		ContentType: img.ContentType,
		Size:        len(img.Data),
		Width:       img.Width,
		Height:      img.Height,
	}, nil
}
