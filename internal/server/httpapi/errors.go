package httpapi

import (
	"errors"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/gin-gonic/gin"
)

// statusFor maps a service error to its HTTP status. Unknown users are 404
// and wrong sequences 401; the two are never swapped.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorNoImagesFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorIncorrectPassword):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict
	case common.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	s.failWith(c, statusFor(err), err)
}

// failWith writes {"detail": ...}. Internal errors are logged and their text
// is not sent to the client.
func (s *Server) failWith(c *gin.Context, code int, err error) {
	detail := capitalize(err.Error())

	if code >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		if errors.Is(err, common.ErrorMalformedStoredData) {
			detail = capitalize(common.ErrorMalformedStoredData.Error())
		} else {
			detail = "Internal server error"
		}
	}

	c.AbortWithStatusJSON(code, gin.H{"detail": detail})
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
