package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avolkov/streamtube/internal/hash"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"  json:"username"`
	Email        string    `gorm:"uniqueIndex;not null"  json:"email"`
	FullName     string    `gorm:"not null"              json:"fullName"`
	Avatar       string    `gorm:"not null"              json:"avatar"`
	CoverImage   string    `json:"coverImage"`
	Password     string    `gorm:"-"                     json:"-"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate assigns the ID and hashes the plaintext password, so the
// plaintext never reaches the database.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Password != "" {
		h, err := hash.HashPassword(u.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = h
		u.Password = ""
	}
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return hash.CheckPassword(u.PasswordHash, password)
}

// PublicUser is the sanitized projection exposed to clients. It structurally
// omits the password and refresh-token fields.
type PublicUser struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
	}
}
