package repository

import (
	"errors"

	"quest-verify-system/models"

	"gorm.io/gorm"
)

type CompletionRepository struct {
	DB *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: db}
}

// FindByUserQuest returns (nil, nil) when no row exists yet.
func (r *CompletionRepository) FindByUserQuest(userID string, questNumber int) (*models.QuestCompletion, error) {
	var c models.QuestCompletion
	err := r.DB.Where("user_id = ? AND quest_number = ?", userID, questNumber).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompletionRepository) ListByUser(userID string) ([]models.QuestCompletion, error) {
	var out []models.QuestCompletion
	if err := r.DB.Where("user_id = ?", userID).Order("quest_number").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CompletionRepository) CompletedNumbers(userID string) (map[int]bool, error) {
	var nums []int
	err := r.DB.Model(&models.QuestCompletion{}).
		Where("user_id = ? AND status = ?", userID, models.StatusCompleted).
		Pluck("quest_number", &nums).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int]bool, len(nums))
	for _, n := range nums {
		out[n] = true
	}
	return out, nil
}

func (r *CompletionRepository) Create(c *models.QuestCompletion) error {
	return r.DB.Create(c).Error
}

func (r *CompletionRepository) Update(c *models.QuestCompletion) error {
	return r.DB.Save(c).Error
}
