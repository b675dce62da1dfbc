package repository

import (
	"github.com/vuthanhlam/quizbank/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository interface {
	Create(attempt *model.QuizAttempt) error
	FindByID(id uint) (*model.QuizAttempt, error)
	FindByIDWithDetails(id uint) (*model.QuizAttempt, error)
	Update(attempt *model.QuizAttempt) error
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) FindByID(id uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	if err := r.db.First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithDetails(id uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.db.Preload("Details").Preload("Details.Question").First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) Update(attempt *model.QuizAttempt) error {
	return r.db.Save(attempt).Error
}

type AttemptDetailRepository interface {
	// Upsert overwrites any existing row for the same (attempt, question)
	// pair so a resubmission before finalization replaces the earlier one.
	Upsert(detail *model.AttemptDetail) error
	FindByAttemptID(attemptID uint) ([]model.AttemptDetail, error)
}

type attemptDetailRepository struct {
	db *gorm.DB
}

func NewAttemptDetailRepository(db *gorm.DB) AttemptDetailRepository {
	return &attemptDetailRepository{db: db}
}

func (r *attemptDetailRepository) Upsert(detail *model.AttemptDetail) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_answer", "is_correct", "updated_at"}),
	}).Create(detail).Error
}

func (r *attemptDetailRepository) FindByAttemptID(attemptID uint) ([]model.AttemptDetail, error) {
	var details []model.AttemptDetail
	if err := r.db.Where("attempt_id = ?", attemptID).Order("question_id ASC").Find(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}
