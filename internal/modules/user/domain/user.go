package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a Telegram participant known to the bot
type User struct {
	ID         string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	TelegramID int64     `json:"telegramId" gorm:"not null;uniqueIndex"`
	Username   string    `json:"username"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	IsAdmin    bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"createdAt" gorm:"not null"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Profile is the display information taken from a Telegram update
type Profile struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

// Actor is the capability resolved once per request by a transport and
// handed to privileged operations.
type Actor struct {
	UserID string
	Role   Role
}

// SystemActor acts for the admin panel and background jobs.
var SystemActor = Actor{Role: RoleAdmin}

// ActorFor derives the actor for a stored user.
func ActorFor(u *User) Actor {
	if u == nil {
		return Actor{Role: RoleStudent}
	}
	role := RoleStudent
	if u.IsAdmin {
		role = RoleAdmin
	}
	return Actor{UserID: u.ID, Role: role}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
