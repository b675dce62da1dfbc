package repository

import (
	"github.com/vuthanhlam/quizbank/internal/model"
	"gorm.io/gorm"
)

type BankRepository interface {
	Create(bank *model.QuestionBank) error
	FindByID(id uint) (*model.QuestionBank, error)
	FindByIDWithQuestions(id uint) (*model.QuestionBank, error)
	FindByOwner(ownerID uint) ([]model.QuestionBank, error)
}

type bankRepository struct {
	db *gorm.DB
}

func NewBankRepository(db *gorm.DB) BankRepository {
	return &bankRepository{db: db}
}

func (r *bankRepository) Create(bank *model.QuestionBank) error {
	return r.db.Create(bank).Error
}

func (r *bankRepository) FindByID(id uint) (*model.QuestionBank, error) {
	var bank model.QuestionBank
	if err := r.db.First(&bank, id).Error; err != nil {
		return nil, err
	}
	return &bank, nil
}

func (r *bankRepository) FindByIDWithQuestions(id uint) (*model.QuestionBank, error) {
	var bank model.QuestionBank
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.created_at ASC")
	}).First(&bank, id).Error
	if err != nil {
		return nil, err
	}
	return &bank, nil
}

func (r *bankRepository) FindByOwner(ownerID uint) ([]model.QuestionBank, error) {
	var banks []model.QuestionBank
	if err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&banks).Error; err != nil {
		return nil, err
	}
	return banks, nil
}
