package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/service"

	"github.com/gin-gonic/gin"
)

// maxMultipartMemory bounds the in-memory part of a multipart form; the file
// itself is capped separately by readFormFile.
const maxMultipartMemory = service.MaxUploadSize + 1<<20

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// readFormFile reads the named file part. It returns nil without error when
// the part is absent and optional is true.
func readFormFile(c *gin.Context, field string, optional bool) (*service.FileUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) && optional {
			return nil, nil
		}
		return nil, apperror.Validation(fmt.Sprintf("%s file is required", field))
	}
	if header.Size > service.MaxUploadSize {
		return nil, apperror.Validation(fmt.Sprintf("file exceeds %d MB", service.MaxUploadSize>>20))
	}

	data, err := readAll(header)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &service.FileUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func readAll(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, service.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}
