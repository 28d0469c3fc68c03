package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultMediaFolder = "uploads"

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var mediaFolderPattern = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

type mediaResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func (s *Server) UploadMedia(c *gin.Context) {
	folder := strings.ToLower(strings.TrimSpace(c.DefaultPostForm("folder", defaultMediaFolder)))
	if !mediaFolderPattern.MatchString(folder) {
		AbortWithError(c, newValidationError("folder", "invalid_folder", "folder must be a short lowercase name"))
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "invalid_file", "file is required"))
		return
	}

	url, err := s.storeUpload(header, folder)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	contentType, _ := sniffContentType(header)
	c.JSON(http.StatusCreated, gin.H{"data": mediaResponse{
		URL:         url,
		ContentType: contentType,
		Size:        header.Size,
	}})
}

// storeUpload writes an image under <media.root>/<folder>/ with a generated
// name and returns its public URL.
func (s *Server) storeUpload(header *multipart.FileHeader, folder string) (string, error) {
	if limit := s.cfg.Media.MaxUploadBytes; limit > 0 && header.Size > limit {
		return "", ErrFileTooLarge
	}

	contentType, err := sniffContentType(header)
	if err != nil {
		return "", err
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", newValidationError("file", "invalid_file", "only jpeg, png, webp and gif images are accepted")
	}

	dir := filepath.Join(s.cfg.Media.Root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := s.genID.Generate().String() + ext
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}

	s.log.Info("media stored",
		zap.String("folder", folder),
		zap.String("name", name),
		zap.Int64("size", header.Size),
	)
	return path.Join("/", s.cfg.Media.URLPrefix, folder, name), nil
}

func sniffContentType(header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if n == 0 {
		return "", newValidationError("file", "invalid_file", "file is empty")
	}
	return http.DetectContentType(buf[:n]), nil
}
