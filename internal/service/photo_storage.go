package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sirupsen/logrus"
	"github.com/taherx7/Medi-connect/config"
)

// ErrStorageDisabled is returned when no Cloudinary credentials are configured.
var ErrStorageDisabled = errors.New("photo storage is not configured")

// PhotoStorage uploads images and returns their public URL.
type PhotoStorage interface {
	Upload(ctx context.Context, publicID string, file io.Reader) (string, error)
}

// StorageStatus is the result of a storage health check.
type StorageStatus struct {
	Reachable    bool
	Folder       string
	FolderExists bool
}

type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
	log    *logrus.Logger
}

// NewPhotoStorage returns a Cloudinary-backed storage, or a disabled one
// when credentials are missing.
func NewPhotoStorage(cfg config.StorageConfig, log *logrus.Logger) (PhotoStorage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		log.Warn("Cloudinary credentials not set, photo uploads are disabled")
		return disabledStorage{}, nil
	}
	return newCloudinaryStorage(cfg, log)
}

func newCloudinaryStorage(cfg config.StorageConfig, log *logrus.Logger) (*cloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &cloudinaryStorage{cld: cld, folder: cfg.Folder, log: log}, nil
}

func (s *cloudinaryStorage) Upload(ctx context.Context, publicID string, file io.Reader) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:  publicID,
		Folder:    s.folder,
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", publicID, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload %s: %s", publicID, result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("failed to upload %s: no URL returned", publicID)
	}

	s.log.Infof("Photo uploaded: %s", result.SecureURL)
	return result.SecureURL, nil
}

// CheckStorage pings the Cloudinary account and looks for the configured
// top-level folder.
func CheckStorage(ctx context.Context, cfg config.StorageConfig, log *logrus.Logger) (*StorageStatus, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrStorageDisabled
	}

	s, err := newCloudinaryStorage(cfg, log)
	if err != nil {
		return nil, err
	}

	status := &StorageStatus{Folder: cfg.Folder}

	ping, err := s.cld.Admin.Ping(ctx)
	if err != nil {
		return status, fmt.Errorf("failed to ping Cloudinary: %w", err)
	}
	if ping.Error.Message != "" {
		return status, fmt.Errorf("failed to ping Cloudinary: %s", ping.Error.Message)
	}
	status.Reachable = true

	folders, err := s.cld.Admin.RootFolders(ctx, admin.RootFoldersParams{})
	if err != nil {
		return status, fmt.Errorf("failed to list folders: %w", err)
	}
	if folders.Error.Message != "" {
		return status, fmt.Errorf("failed to list folders: %s", folders.Error.Message)
	}
	for _, folder := range folders.Folders {
		if strings.EqualFold(folder.Path, cfg.Folder) {
			status.FolderExists = true
			break
		}
	}

	return status, nil
}

type disabledStorage struct{}

func (disabledStorage) Upload(context.Context, string, io.Reader) (string, error) {
	return "", ErrStorageDisabled
}
