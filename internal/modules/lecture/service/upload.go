package service

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/shared/errors"
	"github.com/samber/oops"
)

const genericContentType = "application/octet-stream"

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

var extensionContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// CheckUpload applies the ingestion rules adapters enforce before fetching
// or accepting file bytes. The same rules run again inside Create.
func CheckUpload(contentType, fileName string, size, maxSize int64) error {
	if size > maxSize {
		return oops.With("file_name", fileName, "size", size, "max_size", maxSize).
			Wrap(errors.Mark(errors.ErrValidation, errors.ErrFileTooLarge))
	}
	if resolveContentType(contentType, fileName, nil) == "" {
		return oops.With("file_name", fileName, "content_type", contentType).
			Wrap(errors.Mark(errors.ErrValidation, errors.ErrUnsupportedType))
	}
	return nil
}

// FileTypeFor derives the stored file type from an accepted content type.
func FileTypeFor(contentType string) domain.FileType {
	if strings.Contains(contentType, "pdf") {
		return domain.FileTypePdf
	}
	return domain.FileTypeImage
}

// resolveContentType returns the accepted MIME type for an upload or "" when
// it is not allowed. Only a missing or generic declared type falls back to
// content sniffing and then to the file extension. Sniffed content of a
// recognised but disallowed type is rejected whatever the extension says.
func resolveContentType(declared, fileName string, data []byte) string {
	mt := normalizeContentType(declared)
	if allowedContentTypes[mt] {
		if mt == "image/jpg" {
			return "image/jpeg"
		}
		return mt
	}
	if mt != "" && mt != genericContentType {
		return ""
	}

	if len(data) > 0 {
		sniffed := normalizeContentType(mimetype.Detect(data).String())
		if allowedContentTypes[sniffed] {
			return sniffed
		}
		if sniffed != genericContentType {
			return ""
		}
	}

	return extensionContentTypes[strings.ToLower(filepath.Ext(fileName))]
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
