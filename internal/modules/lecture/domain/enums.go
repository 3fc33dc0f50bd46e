//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// FileType is derived from the upload content type at ingestion
// ENUM(pdf,image)
type FileType string
