// Package attachment provides the upload workflow for receipts and proofs.
package attachment

import (
	"context"
	"fmt"
	"time"

	domainattachment "github.com/farmops/backend/internal/domain/attachment"
	"github.com/farmops/backend/internal/domain/shared"
)

// ObjectStorageService abstracts the blob store holding receipts and proofs
type ObjectStorageService interface {
	// GenerateUploadURL returns a presigned URL the client PUTs the file to
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned URL for retrieving a stored file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes a stored file
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists reports whether the file was actually uploaded
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ServiceConfig holds attachment service configuration
type ServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultServiceConfig returns the default expiries
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// Service validates attachment metadata and brokers presigned URLs
type Service struct {
	storage ObjectStorageService
	config  ServiceConfig
}

// NewService creates a new attachment service
func NewService(storage ObjectStorageService, config ServiceConfig) *Service {
	if config.UploadURLExpiry == 0 {
		config.UploadURLExpiry = DefaultServiceConfig().UploadURLExpiry
	}
	if config.DownloadURLExpiry == 0 {
		config.DownloadURLExpiry = DefaultServiceConfig().DownloadURLExpiry
	}
	return &Service{storage: storage, config: config}
}

// InitiateUploadRequest describes a file the client wants to upload
type InitiateUploadRequest struct {
	Kind        string `json:"kind" binding:"required"`
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required"`
}

// InitiateUploadResponse carries the presigned upload target
type InitiateUploadResponse struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// InitiateUpload validates the file metadata and returns a presigned upload
// URL. The returned storage key is what approval and payment requests later
// reference; the record side re-checks that the object actually exists
// before committing.
func (s *Service) InitiateUpload(ctx context.Context, req InitiateUploadRequest) (*InitiateUploadResponse, error) {
	kind := domainattachment.Kind(req.Kind)
	if !kind.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown attachment kind %q", req.Kind))
	}
	if err := domainattachment.Validate(domainattachment.Metadata{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	}); err != nil {
		return nil, err
	}

	storageKey := domainattachment.NewStorageKey(kind, req.FileName)
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &InitiateUploadResponse{
		StorageKey: storageKey,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// ResolveDownloadURL returns a presigned download URL for a stored key
func (s *Service) ResolveDownloadURL(ctx context.Context, storageKey string) (string, error) {
	if storageKey == "" {
		return "", shared.NewValidationError("Storage key cannot be empty")
	}
	url, _, err := s.storage.GenerateDownloadURL(ctx, storageKey, s.config.DownloadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}
	return url, nil
}

// VerifyStored checks that a referenced attachment was actually uploaded.
// Records referencing a missing object must not be created.
func (s *Service) VerifyStored(ctx context.Context, storageKey string) error {
	exists, err := s.storage.ObjectExists(ctx, storageKey)
	if err != nil {
		return fmt.Errorf("failed to check attachment %s: %w", storageKey, err)
	}
	if !exists {
		return shared.NewValidationError(fmt.Sprintf("Attachment %s has not been uploaded", storageKey))
	}
	return nil
}
