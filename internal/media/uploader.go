// Package media proxies admin uploads to the hosted media service.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aTrapDeer/portfolio-backend/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrNotConfigured = errors.New("media storage is not configured")

// Asset is a hosted file. ResourceType is what the host stored it as
// ("image", "video" or "raw") and is needed to delete it again.
type Asset struct {
	URL          string `json:"url"`
	PublicID     string `json:"publicId"`
	ResourceType string `json:"resourceType,omitempty"`
}

type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string) (*Asset, error)
	Destroy(ctx context.Context, publicID, resourceType string) error
}

// ResourceTypes are the kinds an asset can be deleted as. Empty means image.
var ResourceTypes = []string{"image", "video", "raw"}

type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cfg config.CloudinaryConfig) (*Cloudinary, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, file io.Reader, folder string) (*Asset, error) {
	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		ResourceType:   "auto",
		UniqueFilename: api.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return &Asset{URL: resp.SecureURL, PublicID: resp.PublicID, ResourceType: resp.ResourceType}, nil
}

func (c *Cloudinary) Destroy(ctx context.Context, publicID, resourceType string) error {
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", resp.Error.Message)
	}
	return nil
}

// Unconfigured rejects every call. It stands in when no credentials are set
// so the rest of the API still runs.
type Unconfigured struct{}

func (Unconfigured) Upload(context.Context, io.Reader, string) (*Asset, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) Destroy(context.Context, string, string) error {
	return ErrNotConfigured
}
