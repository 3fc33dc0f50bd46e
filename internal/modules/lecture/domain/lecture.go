package domain

import (
	"time"

	"github.com/google/uuid"
	userDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
	"gorm.io/gorm"
)

// Lecture is an uploaded file plus the metadata students browse by
type Lecture struct {
	ID            string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	Title         string           `json:"title" gorm:"not null"`
	Description   string           `json:"description"`
	Subject       string           `json:"subject" gorm:"not null;index"`
	FileName      string           `json:"fileName" gorm:"not null"`
	OriginalName  string           `json:"originalName"`
	FilePath      string           `json:"filePath" gorm:"not null"`
	FileType      FileType         `json:"fileType" gorm:"type:varchar(16);not null"`
	FileSize      int64            `json:"fileSize" gorm:"not null"`
	DownloadCount int64            `json:"downloadCount" gorm:"not null;default:0"`
	UploadedBy    string           `json:"uploadedBy" gorm:"type:varchar(36);not null;index"`
	Uploader      *userDomain.User `json:"-" gorm:"foreignKey:UploadedBy;references:ID"`
	CreatedAt     time.Time        `json:"createdAt" gorm:"not null;index"`
}

func (l *Lecture) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// DisplayName is the name shown to students when the file is sent
func (l *Lecture) DisplayName() string {
	if l.OriginalName != "" {
		return l.OriginalName
	}
	return l.FileName
}

// ListFilter selects a page of lectures, newest first
type ListFilter struct {
	Limit   int
	Offset  int
	Subject string
}

// CreateInput carries an upload into the lifecycle manager
type CreateInput struct {
	Title        string `validate:"required,max=255"`
	Description  string `validate:"max=4096"`
	Subject      string `validate:"required,max=128"`
	Data         []byte
	OriginalName string
	ContentType  string
	UploaderID   string `validate:"required"`
}
