// Package images validates image batches attached to an account during signup.
package images

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
)

// Limits bounds a single batch.
type Limits struct {
	MaxCount int
	MaxSize  int64
}

// DefaultLimits allows up to 5 images of at most 5 MiB each.
func DefaultLimits() Limits {
	return Limits{MaxCount: common.DefaultMaxImages, MaxSize: common.DefaultMaxImageSize}
}

// Upload is an image as received from a client, before validation.
type Upload struct {
	Filename    string
	ContentType string
	// Size is the size declared by the transport; the validator re-checks
	// it against the bytes actually read.
	Size int64
	open func() (io.ReadCloser, error)
}

// NewUpload wraps in-memory content.
func NewUpload(filename, contentType string, data []byte) Upload {
	return Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FromMultipart wraps a file part of a multipart form.
func FromMultipart(fh *multipart.FileHeader) Upload {
	return Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// Validator enforces Limits and content type rules.
type Validator struct {
	limits Limits
}

func NewValidator(l Limits) *Validator {
	return &Validator{limits: l}
}

func (v *Validator) Limits() Limits { return v.limits }

// Validate checks the batch and reads every image. The returned images keep
// the input order because password tokens refer to images by index.
func (v *Validator) Validate(batch []Upload) ([]models.Image, error) {
	if len(batch) == 0 {
		return nil, common.ErrorNoImages
	}
	if len(batch) > v.limits.MaxCount {
		return nil, fmt.Errorf("%w: maximum %d images allowed", common.ErrorTooManyImages, v.limits.MaxCount)
	}

	result := make([]models.Image, 0, len(batch))
	for _, u := range batch {
		img, err := v.read(u)
		if err != nil {
			return nil, err
		}
		result = append(result, img)
	}

	return result, nil
}

func (v *Validator) read(u Upload) (models.Image, error) {
	if !isImage(u.ContentType) {
		return models.Image{}, fmt.Errorf("%w: %s", common.ErrorInvalidContentType, u.Filename)
	}
	if u.Size > v.limits.MaxSize {
		return models.Image{}, fmt.Errorf("%w: %s", common.ErrorFileTooLarge, u.Filename)
	}
	if u.open == nil {
		return models.Image{}, fmt.Errorf("%w: %s has no content", common.ErrorValidation, u.Filename)
	}

	r, err := u.open()
	if err != nil {
		return models.Image{}, fmt.Errorf("open %s: %w", u.Filename, err)
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, v.limits.MaxSize+1))
	if err != nil {
		return models.Image{}, fmt.Errorf("read %s: %w", u.Filename, err)
	}
	if int64(len(data)) > v.limits.MaxSize {
		return models.Image{}, fmt.Errorf("%w: %s", common.ErrorFileTooLarge, u.Filename)
	}

	return models.Image{
		Filename:    u.Filename,
		ContentType: u.ContentType,
		Data:        data,
		Size:        int64(len(data)),
	}, nil
}

func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
