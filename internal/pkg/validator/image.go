package validator

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/futig/blueprint-backend/internal/config"
	"github.com/futig/blueprint-backend/internal/entity"
)

const octetStream = "application/octet-stream"

// Validator validates image uploads
type Validator struct {
	cfg config.FileUploadConfig
}

func NewFileValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// MaxUploadSize is the limit for a whole multipart body
func (v *Validator) MaxUploadSize() int64 {
	return v.cfg.MaxUploadSize
}

// MaxImageSize is the limit for a single image
func (v *Validator) MaxImageSize() int64 {
	return v.cfg.MaxImageSize
}

// ReadImage validates and reads an uploaded image file
func (v *Validator) ReadImage(fh *multipart.FileHeader) (*entity.Image, error) {
	if fh.Size > v.cfg.MaxImageSize {
		return nil, fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, fh.Filename, fh.Size, v.cfg.MaxImageSize)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFile, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, v.cfg.MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFile, err)
	}

	return v.ValidateImage(data, fh.Header.Get("Content-Type"), SanitizeFilename(fh.Filename))
}

// ValidateImage checks size and media type of raw image bytes.
// A missing or generic declared type is replaced by the sniffed one when that is an image,
// otherwise it stays empty and the default applies downstream.
func (v *Validator) ValidateImage(data []byte, declaredType, filename string) (*entity.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image is empty", entity.ErrInvalidFile)
	}
	if int64(len(data)) > v.cfg.MaxImageSize {
		return nil, fmt.Errorf("%w: image is %d bytes (max %d)", entity.ErrFileTooLarge, len(data), v.cfg.MaxImageSize)
	}

	mediaType, err := NormalizeMediaType(declaredType, data)
	if err != nil {
		return nil, err
	}

	return &entity.Image{
		Data:      data,
		MediaType: mediaType,
		Filename:  filename,
	}, nil
}

// NormalizeMediaType returns the image media type to forward upstream
func NormalizeMediaType(declared string, data []byte) (string, error) {
	if declared != "" {
		parsed, _, err := mime.ParseMediaType(declared)
		if err != nil {
			return "", fmt.Errorf("%w: %q", entity.ErrInvalidMediaType, declared)
		}
		declared = strings.ToLower(parsed)
	}

	if declared != "" && declared != octetStream {
		if !strings.HasPrefix(declared, "image/") {
			return "", fmt.Errorf("%w: %q is not an image", entity.ErrInvalidMediaType, declared)
		}
		return declared, nil
	}

	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed, nil
	}

	return "", nil
}

// SanitizeFilename strips directories and characters that are awkward in file names
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
	)
	return replacer.Replace(filename)
}
