// Package upload validates case photos and writes them to object storage.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"redesperanza/web/internal/ids"
	"redesperanza/web/internal/media/sniffer"
)

var (
	ErrUnsupportedType = errors.New("Solo se permiten archivos JPG, PNG o WebP")
	ErrTooLarge        = errors.New("upload: file too large")
	ErrEmpty           = errors.New("El archivo está vacío")
)

// TooLargeError reports the configured limit to the user and matches ErrTooLarge.
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return "El archivo debe ser menor a " + FormatSize(e.Limit)
}

func (e *TooLargeError) Is(target error) bool {
	return target == ErrTooLarge
}

// FormatSize renders n bytes as MB or KB, e.g. 5242880 -> "5MB".
func FormatSize(n int64) string {
	if n >= 1<<20 {
		return strconv.FormatFloat(float64(n)/(1<<20), 'f', -1, 64) + "MB"
	}
	return strconv.FormatFloat(float64(n)/(1<<10), 'f', -1, 64) + "KB"
}

type ObjectWriter interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

type PendingTracker interface {
	Track(ctx context.Context, owner, key string) error
}

type Input struct {
	// Owner is the session the upload belongs to.
	Owner        string
	File         io.Reader
	Size         int64
	DeclaredType string
}

type Result struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	MIME string `json:"content_type"`
}

type Service struct {
	store    ObjectWriter
	tracker  PendingTracker
	maxBytes int64
	now      func() time.Time
	log      zerolog.Logger
}

func NewService(store ObjectWriter, tracker PendingTracker, maxBytes int64, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		tracker:  tracker,
		maxBytes: maxBytes,
		now:      time.Now,
		log:      log,
	}
}

func (s *Service) Upload(ctx context.Context, input Input) (Result, error) {
	if input.File == nil {
		return Result{}, ErrEmpty
	}
	if input.DeclaredType != "" && !sniffer.Allowed(input.DeclaredType) {
		return Result{}, ErrUnsupportedType
	}
	if input.Size > s.maxBytes {
		return Result{}, &TooLargeError{Limit: s.maxBytes}
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.maxBytes+1))
	if err != nil {
		return Result{}, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return Result{}, &TooLargeError{Limit: s.maxBytes}
	}
	if len(data) == 0 {
		return Result{}, ErrEmpty
	}

	detected, err := sniffer.DetectHead(data)
	if err != nil {
		return Result{}, ErrUnsupportedType
	}
	if input.DeclaredType != "" && input.DeclaredType != detected.MIME {
		return Result{}, ErrUnsupportedType
	}

	key := s.objectKey(detected.Extension())
	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), detected.MIME); err != nil {
		return Result{}, fmt.Errorf("store image: %w", err)
	}

	if s.tracker != nil && input.Owner != "" {
		if err := s.tracker.Track(ctx, input.Owner, key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("track pending upload failed")
		}
	}

	s.log.Info().Str("key", key).Int("bytes", len(data)).Str("type", detected.MIME).Msg("image uploaded")

	return Result{
		Key:  key,
		URL:  s.store.PublicURL(key),
		MIME: detected.MIME,
	}, nil
}

func (s *Service) objectKey(ext string) string {
	return fmt.Sprintf("cases/%d-%s.%s", s.now().UnixMilli(), ids.New(), ext)
}
