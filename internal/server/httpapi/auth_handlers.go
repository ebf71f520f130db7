package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
	"github.com/dmitrijs2005/graphpass/internal/server/sequence"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email            string          `json:"email"`
	PasswordSequence json.RawMessage `json:"password_sequence"`
}

type imageResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
	Size        int64  `json:"size"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readCredentials binds the body and parses the submitted sequence. missing
// reports an absent or empty email or sequence. A sequence that does not
// parse comes back as nil: it cannot equal any stored one, so the account
// lookup still decides between not found and incorrect password.
func readCredentials(c *gin.Context) (email string, seq sequence.Sequence, missing bool, err error) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", nil, false, fmt.Errorf("%w: malformed JSON body", common.ErrorValidation)
	}
	if strings.TrimSpace(req.Email) == "" || emptySequence(req.PasswordSequence) {
		return "", nil, true, nil
	}
	seq, err = sequence.Parse(req.PasswordSequence)
	if err != nil {
		return req.Email, nil, false, nil
	}
	return req.Email, seq, false, nil
}

func emptySequence(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", `""`:
		return true
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err == nil && len(items) == 0 {
		return true
	}
	return false
}

func (s *Server) login(c *gin.Context) {
	email, seq, missing, err := readCredentials(c)
	if missing {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Email and password sequence required"})
		return
	}
	if err != nil {
		s.failWith(c, http.StatusBadRequest, err)
		return
	}

	firstname, err := s.auth.Login(c.Request.Context(), email, seq)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"firstname": firstname})
}

func (s *Server) getImages(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Email query parameter required"})
		return
	}

	imgs, err := s.auth.GetImages(c.Request.Context(), email)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"images": toImageResponses(imgs)})
}

func toImageResponses(imgs []models.Image) []imageResponse {
	out := make([]imageResponse, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, imageResponse{
			Filename:    img.Filename,
			ContentType: img.ContentType,
			Data:        img.Data,
			Size:        img.Size,
		})
	}
	return out
}

func (s *Server) verifyPassword(c *gin.Context) {
	email, seq, missing, err := readCredentials(c)
	if missing {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": "Email and password sequence required"})
		return
	}
	if err != nil {
		s.failWith(c, http.StatusUnprocessableEntity, err)
		return
	}

	if _, err := s.auth.VerifyPassword(c.Request.Context(), email, seq); err != nil {
		if errors.Is(err, common.ErrorIncorrectPassword) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid graphical password"})
			return
		}
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Login successful"})
}
