package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appErrors "github.com/attachlink/placement-api/pkg/errors"
	"github.com/attachlink/placement-api/pkg/response"
	"github.com/attachlink/placement-api/pkg/storage"
)

// UploadConfig bounds incoming multipart files.
type UploadConfig struct {
	MaxFileSizeBytes int64
}

// Uploader saves multipart files into local storage and issues signed
// download tokens for the stored paths.
type Uploader struct {
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
	config  UploadConfig
}

// NewUploader creates a new Uploader.
func NewUploader(store *storage.LocalStorage, signer *storage.SignedURLSigner, config UploadConfig) *Uploader {
	if config.MaxFileSizeBytes <= 0 {
		config.MaxFileSizeBytes = 10 << 20
	}
	return &Uploader{storage: store, signer: signer, config: config}
}

// saveFormFile stores the named multipart file under subdir and returns the
// stored relative path.
func (u *Uploader) saveFormFile(c *gin.Context, field, subdir string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, fmt.Sprintf("file %q is required", field))
	}
	return u.saveFileHeader(header, subdir)
}

// saveOptionalFormFile behaves like saveFormFile but returns empty when the
// field is absent.
func (u *Uploader) saveOptionalFormFile(c *gin.Context, field, subdir string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart payload")
	}
	return u.saveFileHeader(header, subdir)
}

func (u *Uploader) saveFileHeader(header *multipart.FileHeader, subdir string) (string, error) {
	if header.Size > u.config.MaxFileSizeBytes {
		return "", appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum allowed size")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	relPath := filepath.Join(subdir, uuid.NewString()+ext)

	file, err := header.Open()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	defer file.Close() //nolint:errcheck

	stored, err := u.storage.SaveStream(relPath, file)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}
	return stored, nil
}

// DownloadToken issues a signed token for the stored path.
func (u *Uploader) DownloadToken(ownerID, relPath string) (string, error) {
	token, _, err := u.signer.Generate(ownerID, relPath)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}
	return token, nil
}

// Download godoc
// @Summary Download a stored file
// @Description Stream a stored upload referenced by a signed token
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /files/{token} [get]
func (u *Uploader) Download(c *gin.Context) {
	token := c.Param("token")
	_, relPath, _, err := u.signer.Parse(token, false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidToken, "download link is invalid or expired"))
		return
	}

	c.FileAttachment(u.storage.Path(relPath), filepath.Base(relPath))
}
