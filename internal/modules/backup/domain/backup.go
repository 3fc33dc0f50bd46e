package domain

import (
	"time"

	statsDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/stats/domain"
)

// Backup is the exported snapshot of lecture metadata. File contents are
// not included.
type Backup struct {
	Timestamp  time.Time          `json:"timestamp"`
	Statistics *statsDomain.Stats `json:"statistics"`
	Lectures   []LectureRecord    `json:"lectures"`
}

// LectureRecord is the exported subset of a lecture
type LectureRecord struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Subject       string    `json:"subject"`
	FileName      string    `json:"fileName"`
	OriginalName  string    `json:"originalName,omitempty"`
	FileType      string    `json:"fileType"`
	FileSize      int64     `json:"fileSize"`
	DownloadCount int64     `json:"downloadCount"`
	CreatedAt     time.Time `json:"createdAt"`
}
