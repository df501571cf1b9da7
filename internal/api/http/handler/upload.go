package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/videotube-server/internal/apierror"
)

// Uploads stores multipart files in a local temp directory until the
// account service hands them to the media store.
type Uploads struct {
	dir string
}

// NewUploads creates the temp directory if needed.
func NewUploads(dir string) (*Uploads, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &Uploads{dir: dir}, nil
}

// parseForm parses the multipart body of the request.
func parseForm(c *gin.Context) (*multipart.Form, error) {
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apierror.BadRequest("request body is too large").WithCause(err)
		}
		return nil, apierror.BadRequest("invalid multipart form").WithCause(err)
	}
	return form, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// save writes the first file of field to the temp directory and returns its
// path. A missing field yields an empty path.
func (u *Uploads) save(c *gin.Context, form *multipart.Form, field string) (string, error) {
	files := form.File[field]
	if len(files) == 0 {
		return "", nil
	}
	fh := files[0]

	dst := filepath.Join(u.dir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", apierror.Internal("failed to store uploaded file").WithCause(err)
	}
	return dst, nil
}
