package authUtils

import (
	"errors"
	"fmt"
	"math/rand"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"civicpulse-be/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

var (
	ErrTooManyImages = errors.New("too many image attachments")
	ErrImageTooLarge = errors.New("image exceeds the size limit")
	ErrNotAnImage    = errors.New("only image files are allowed")
)

// SaveComplaintImages validates and persists uploaded complaint images
// under the configured upload directory, returning their public URL
// paths. Each file must be an image by sniffed MIME type and within
// the size limit; at most MaxImagesPerPost files are accepted.
func SaveComplaintImages(c *gin.Context, files []*multipart.FileHeader) ([]string, error) {
	cfg := config.AppConfig.Uploads
	if len(files) > cfg.MaxImagesPerPost {
		return nil, ErrTooManyImages
	}

	var urls []string
	for _, file := range files {
		if file.Size > cfg.MaxImageBytes {
			return nil, ErrImageTooLarge
		}

		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		mtype, err := mimetype.DetectReader(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(mtype.String(), "image/") {
			return nil, ErrNotAnImage
		}

		filename := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), filepath.Ext(file.Filename))
		dst := filepath.Join(cfg.Dir, filename)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			return nil, err
		}
		urls = append(urls, "/uploads/"+filename)
	}
	return urls, nil
}
