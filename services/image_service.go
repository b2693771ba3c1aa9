package services

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	apperrors "github.com/yashrajoria/storefront/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Uploader stores an object and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// ImageService turns a base64 image from the product form into an imageUrl.
type ImageService interface {
	Enabled() bool
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
	UploadBase64(ctx context.Context, encoded string) (string, error)
}

type imageServiceImpl struct {
	uploader Uploader
	logger   *zap.Logger
}

// NewImageService returns a service that rejects uploads when uploader is nil.
func NewImageService(uploader Uploader, logger *zap.Logger) ImageService {
	return &imageServiceImpl{uploader: uploader, logger: logger}
}

func (s *imageServiceImpl) Enabled() bool {
	return s.uploader != nil
}

func (s *imageServiceImpl) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if s.uploader == nil {
		return "", apperrors.Validation("Image upload is not available")
	}
	url, err := s.uploader.Upload(ctx, name, data, contentType)
	if err != nil {
		s.logger.Error("Image upload failed", zap.String("name", name), zap.Error(err))
		return "", apperrors.Network("Image upload failed", err)
	}
	return url, nil
}

// UploadBase64 accepts raw base64 or a data URI.
func (s *imageServiceImpl) UploadBase64(ctx context.Context, encoded string) (string, error) {
	if s.uploader == nil {
		return "", apperrors.Validation("Image upload is not available")
	}

	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil || len(data) == 0 {
		return "", apperrors.Validation("Image is not valid base64")
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperrors.Validation("Only images can be uploaded")
	}

	name := "product_img_" + uuid.NewString() + extensionFor(contentType)
	return s.Upload(ctx, name, data, contentType)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}
