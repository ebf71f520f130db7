package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/server/images"
	"github.com/gin-gonic/gin"
)

func (s *Server) signupBasic(c *gin.Context) {
	acc, created, err := s.signup.SubmitBasicInfo(c.Request.Context(), c.PostForm("email"), c.PostForm("firstname"))
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyCompleted) {
			s.failWith(c, http.StatusConflict, err)
			return
		}
		s.fail(c, err)
		return
	}

	verb := "updated"
	if created {
		verb = "saved"
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Basic info %s, status: %s", verb, acc.Status())})
}

func (s *Server) signupImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "Request body too large"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Multipart form expected"})
		return
	}

	var email string
	if v := form.Value["email"]; len(v) > 0 {
		email = v[0]
	}
	if email == "" {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": "Email required"})
		return
	}

	files := form.File["images"]
	uploads := make([]images.Upload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, images.FromMultipart(fh))
	}

	acc, err := s.signup.SubmitImages(c.Request.Context(), email, uploads)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d images uploaded", len(acc.Images)),
		"status":  acc.Status(),
	})
}

func (s *Server) signupFinalize(c *gin.Context) {
	email := c.PostForm("email")
	if email == "" {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": "Email required"})
		return
	}

	acc, err := s.signup.SubmitPasswordSequence(c.Request.Context(), email, []byte(c.PostForm("password_sequence")))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Signup complete", "status": acc.Status()})
}
