// Package uploads holds the attachment policy: which media types are
// accepted and how large a single file may be.
package uploads

import (
	"io"
	"mime/multipart"

	"github.com/AVVlasov/procurement-pl-sub001/internal/apperr"
)

// Upload is an in-memory uploaded file, already read off the wire.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Requests and products accept business documents only.
var allowedDocumentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
	"application/vnd.oasis.opendocument.text":        true,
	"application/vnd.oasis.opendocument.spreadsheet": true,
	"text/csv":   true,
	"text/plain": true,
}

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

func ValidateDocument(u Upload, maxSize int64) error {
	if !allowedDocumentTypes[u.ContentType] {
		return apperr.Newf(apperr.KindUnsupportedFile, "file %q has unsupported media type %q", u.Name, u.ContentType)
	}
	return validateSize(u, maxSize)
}

func ValidateImage(u Upload, maxSize int64) error {
	if !allowedImageTypes[u.ContentType] {
		return apperr.Newf(apperr.KindUnsupportedFile, "file %q has unsupported image type %q", u.Name, u.ContentType)
	}
	return validateSize(u, maxSize)
}

func validateSize(u Upload, maxSize int64) error {
	if u.Size == 0 {
		return apperr.Newf(apperr.KindValidation, "file %q is empty", u.Name)
	}
	if u.Size > maxSize {
		return apperr.Newf(apperr.KindFileTooLarge, "file %q exceeds the %d byte limit", u.Name, maxSize)
	}
	return nil
}

// FromMultipart reads one multipart file into memory.
func FromMultipart(fh *multipart.FileHeader) (Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return Upload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return Upload{}, err
	}
	return Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
