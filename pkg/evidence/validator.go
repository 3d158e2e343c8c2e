package evidence

import (
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxBytes is the largest evidence image accepted.
const DefaultMaxBytes int64 = 5 * 1024 * 1024

var (
	// ErrMissingFile is returned when no evidence was attached.
	ErrMissingFile = errors.New("Please fill in all required fields.")
	// ErrNotImage is returned for a non-image upload.
	ErrNotImage = errors.New("Please upload an image file.")
	// ErrTooLarge is returned for an upload above the size limit.
	ErrTooLarge = errors.New("File size must be less than 5MB.")
)

// Upload describes a proof-of-payment file received from the storefront.
type Upload struct {
	Filename     string
	DeclaredType string
	Size         int64
	Data         []byte
}

// Validator checks evidence uploads before anything leaves the process.
type Validator struct {
	maxBytes int64
}

// NewValidator builds a validator. A non-positive limit falls back to DefaultMaxBytes.
func NewValidator(maxBytes int64) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Validator{maxBytes: maxBytes}
}

// MaxBytes returns the configured size limit.
func (v *Validator) MaxBytes() int64 {
	return v.maxBytes
}

// Validate applies the type rule, then the size rule, and returns the content type to forward.
func (v *Validator) Validate(u Upload) (string, error) {
	if u.Size <= 0 && len(u.Data) == 0 {
		return "", ErrMissingFile
	}

	contentType := ContentType(u)
	if !strings.HasPrefix(contentType, "image/") {
		return contentType, ErrNotImage
	}

	size := u.Size
	if size <= 0 {
		size = int64(len(u.Data))
	}
	if size > v.maxBytes {
		return contentType, ErrTooLarge
	}
	return contentType, nil
}

// ContentType returns the declared type, sniffing the content when the browser sent none
// or a generic binary type.
func ContentType(u Upload) string {
	declared := strings.ToLower(strings.TrimSpace(u.DeclaredType))
	if idx := strings.Index(declared, ";"); idx >= 0 {
		declared = strings.TrimSpace(declared[:idx])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if len(u.Data) == 0 {
		return declared
	}
	return mimetype.Detect(u.Data).String()
}
