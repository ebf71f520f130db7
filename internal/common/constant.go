package common

// RequestIDHeaderName is the HTTP header carrying the per-request id that is
// attached to every log line produced while serving the request.
const RequestIDHeaderName = "X-Request-Id"

const (
	// DefaultMaxImages is the largest image batch a signup may attach.
	DefaultMaxImages = 5
	// DefaultMaxImageSize is the largest accepted image, in bytes (5 MiB).
	DefaultMaxImageSize int64 = 5 * 1024 * 1024
)
