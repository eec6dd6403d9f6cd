package repository

import (
	"errors"

	"quest-verify-system/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// FindByWallet returns (nil, nil) when no user exists for the wallet.
func (r *UserRepository) FindByWallet(wallet string) (*models.User, error) {
	var u models.User
	err := r.DB.Where("wallet_address = ?", wallet).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(u *models.User) error {
	return r.DB.Create(u).Error
}

// SetTwitterHandle assigns the handle only when none is recorded yet
// (first-write wins).
func (r *UserRepository) SetTwitterHandle(userID, handle string) error {
	return r.DB.Model(&models.User{}).
		Where("id = ? AND twitter_handle IS NULL", userID).
		Update("twitter_handle", handle).Error
}
