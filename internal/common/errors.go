// Package common defines shared constants and sentinel errors used across
// the graphpass server layers. Callers should use errors.Is to match these
// values; call sites wrap them with fmt.Errorf("%w: ...") to add detail.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("user not found")
	ErrorAlreadyExists = errors.New("user already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Client input errors.
	ErrorValidation       = errors.New("validation error")
	ErrorInvalidFormat    = errors.New("invalid password sequence format")
	ErrorAlreadyCompleted = errors.New("user already completed signup")

	// Image attachment errors.
	ErrorNoImages           = errors.New("no images provided")
	ErrorTooManyImages      = errors.New("too many images")
	ErrorInvalidContentType = errors.New("invalid file type")
	ErrorFileTooLarge       = errors.New("file too large")
	ErrorNoImagesFound      = errors.New("no images found for this user")

	// Authentication errors.
	ErrorIncorrectPassword = errors.New("incorrect password")

	// Integrity errors: stored data that can no longer be decoded.
	ErrorMalformedStoredData = errors.New("stored data format invalid")
)

// IsClientError reports whether err is caused by caller input rather than
// by the server or its storage.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrorValidation,
		ErrorInvalidFormat,
		ErrorAlreadyCompleted,
		ErrorAlreadyExists,
		ErrorNoImages,
		ErrorTooManyImages,
		ErrorInvalidContentType,
		ErrorFileTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
