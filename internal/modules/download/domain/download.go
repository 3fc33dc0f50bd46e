package domain

import (
	"time"

	"github.com/google/uuid"
	lectureDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	userDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
	"gorm.io/gorm"
)

// Download records one delivery of a lecture file to a user
type Download struct {
	ID           string                 `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID       string                 `json:"userId" gorm:"type:varchar(36);not null;index"`
	User         *userDomain.User       `json:"-" gorm:"foreignKey:UserID;references:ID"`
	LectureID    string                 `json:"lectureId" gorm:"type:varchar(36);not null;index"`
	Lecture      *lectureDomain.Lecture `json:"lecture,omitempty" gorm:"foreignKey:LectureID;references:ID"`
	DownloadedAt time.Time              `json:"downloadedAt" gorm:"not null"`
}

func (d *Download) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DownloadedAt.IsZero() {
		d.DownloadedAt = time.Now()
	}
	return nil
}
