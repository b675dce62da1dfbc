package repository

import (
	"github.com/vuthanhlam/quizbank/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(question *model.Question) error
	FindByID(id uint) (*model.Question, error)
	FindByBankID(bankID uint) ([]model.Question, error)
	Update(question *model.Question) error
	Delete(id uint) error
	// WithDB returns a repository bound to the given gorm handle. The
	// async worker uses it to give each background job its own session
	// instead of reusing a request-scoped one.
	WithDB(db *gorm.DB) QuestionRepository
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByBankID(bankID uint) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.Where("bank_id = ?", bankID).Order("created_at ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) Update(question *model.Question) error {
	return r.db.Save(question).Error
}

func (r *questionRepository) Delete(id uint) error {
	return r.db.Delete(&model.Question{}, id).Error
}

func (r *questionRepository) WithDB(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}
