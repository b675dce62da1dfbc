package repository

import (
	"github.com/vuthanhlam/quizbank/internal/model"
	"gorm.io/gorm"
)

type AIConfigRepository interface {
	Create(cfg *model.AIConfig) error
	// FindDefault returns the user's default credential set, or the most
	// recent one when no default is flagged. gorm.ErrRecordNotFound when
	// the user has none.
	FindDefault(userID uint) (*model.AIConfig, error)
	FindByProvider(userID uint, provider string) (*model.AIConfig, error)
}

type aiConfigRepository struct {
	db *gorm.DB
}

func NewAIConfigRepository(db *gorm.DB) AIConfigRepository {
	return &aiConfigRepository{db: db}
}

func (r *aiConfigRepository) Create(cfg *model.AIConfig) error {
	return r.db.Create(cfg).Error
}

func (r *aiConfigRepository) FindDefault(userID uint) (*model.AIConfig, error) {
	var cfg model.AIConfig
	err := r.db.Where("user_id = ? AND is_default = true", userID).First(&cfg).Error
	if err == nil {
		return &cfg, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	err = r.db.Where("user_id = ?", userID).Order("created_at DESC").First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *aiConfigRepository) FindByProvider(userID uint, provider string) (*model.AIConfig, error) {
	var cfg model.AIConfig
	err := r.db.Where("user_id = ? AND provider = ?", userID, provider).Order("created_at DESC").First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
