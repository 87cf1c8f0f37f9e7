package service

import (
	"fmt"
	"strings"

	"github.com/adityatechndevoops/OliveStore/internal/apperror"
	"github.com/adityatechndevoops/OliveStore/internal/models"
)

// MaxUploadSize caps document and image uploads.
const MaxUploadSize = 5 << 20

// recentOrdersLimit is the page size used when a listing names neither page
// nor limit.
const recentOrdersLimit = 50

var (
	documentContentTypes = map[string]struct{}{
		"image/jpeg":      {},
		"image/png":       {},
		"application/pdf": {},
	}
	imageContentTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
	}
)

// FileUpload is a file received from a client.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func validateUpload(f *FileUpload, allowed map[string]struct{}) error {
	if f == nil || len(f.Data) == 0 {
		return apperror.Validation("file is required")
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(f.ContentType, ";", 2)[0]))
	if _, ok := allowed[ct]; !ok {
		return apperror.Validation(fmt.Sprintf("unsupported file type %q", f.ContentType))
	}
	if len(f.Data) > MaxUploadSize {
		return apperror.Validation(fmt.Sprintf("file exceeds %d MB", MaxUploadSize>>20))
	}
	f.ContentType = ct
	return nil
}

// ListQuery carries raw page and limit values from a request; zero means
// not given.
type ListQuery struct {
	Page  int
	Limit int
}

func (q ListQuery) pagination() models.Pagination {
	return models.NewPagination(q.Page, q.Limit)
}

// recentOrDefault returns the most recent recentOrdersLimit rows when
// neither page nor limit was given.
func (q ListQuery) recentOrDefault() models.Pagination {
	if q.Page == 0 && q.Limit == 0 {
		return models.Pagination{Page: 1, Limit: recentOrdersLimit}
	}
	return q.pagination()
}

func newPage[T any](items []T, p models.Pagination, total int) *models.Page[T] {
	if items == nil {
		items = []T{}
	}
	return &models.Page[T]{Items: items, Page: p.Page, Limit: p.Limit, Total: total}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
