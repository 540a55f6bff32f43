package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Username     string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*User, error) {
	var user User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUser(ctx context.Context, db *gorm.DB, id int) (*User, error) {
	var user User
	err := db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies the credentials and issues a signed token.
func Login(ctx context.Context, db *gorm.DB, username string, password string) (string, error) {
	user, err := GetUserByUsername(ctx, db, strings.TrimSpace(username))
	if err != nil {
		return "", err
	}
	if err := utils.ComparePassword(user.PasswordHash, password); err != nil {
		return "", err
	}
	return utils.JwtGenerate(user.ID, user.Username)
}

// CreateOrUpdateUser upserts a user by username with a freshly hashed
// password. Used by the seed-admin job.
func CreateOrUpdateUser(ctx context.Context, db *gorm.DB, username string, password string) (*User, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var existing User
	err = db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		user := User{Username: username, PasswordHash: string(hashed)}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	existing.PasswordHash = string(hashed)
	if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}
