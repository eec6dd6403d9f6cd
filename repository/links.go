package repository

import (
	"errors"

	"quest-verify-system/models"

	"gorm.io/gorm"
)

type LinkRepository struct {
	DB *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{DB: db}
}

// FindByWallet returns (nil, nil) when the wallet has no link record.
func (r *LinkRepository) FindByWallet(wallet string) (*models.LinkRecord, error) {
	var l models.LinkRecord
	err := r.DB.Where("wallet_address = ?", wallet).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FindByHandle returns (nil, nil) when the handle is unclaimed.
func (r *LinkRepository) FindByHandle(handle string) (*models.LinkRecord, error) {
	var l models.LinkRecord
	err := r.DB.Where("twitter_handle = ?", handle).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LinkRepository) Create(l *models.LinkRecord) error {
	return r.DB.Create(l).Error
}

func (r *LinkRepository) List() ([]models.LinkRecord, error) {
	var out []models.LinkRecord
	if err := r.DB.Order("verified_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
