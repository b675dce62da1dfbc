package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vuthanhlam/quizbank/internal/dto"
	"github.com/vuthanhlam/quizbank/internal/model"
	"gorm.io/gorm"
)

type fakeAttemptRepo struct {
	attempts map[uint]*model.QuizAttempt
	nextID   uint
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{attempts: make(map[uint]*model.QuizAttempt), nextID: 1}
}

func (r *fakeAttemptRepo) Create(a *model.QuizAttempt) error {
	a.ID = r.nextID
	r.nextID++
	cp := *a
	r.attempts[a.ID] = &cp
	return nil
}

func (r *fakeAttemptRepo) FindByID(id uint) (*model.QuizAttempt, error) {
	a, ok := r.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAttemptRepo) FindByIDWithDetails(id uint) (*model.QuizAttempt, error) {
	return r.FindByID(id)
}

func (r *fakeAttemptRepo) Update(a *model.QuizAttempt) error {
	cp := *a
	r.attempts[a.ID] = &cp
	return nil
}

type fakeDetailRepo struct {
	rows map[[2]uint]model.AttemptDetail
}

func newFakeDetailRepo() *fakeDetailRepo {
	return &fakeDetailRepo{rows: make(map[[2]uint]model.AttemptDetail)}
}

func (r *fakeDetailRepo) Upsert(d *model.AttemptDetail) error {
	r.rows[[2]uint{d.AttemptID, d.QuestionID}] = *d
	return nil
}

func (r *fakeDetailRepo) FindByAttemptID(attemptID uint) ([]model.AttemptDetail, error) {
	var out []model.AttemptDetail
	for key, d := range r.rows {
		if key[0] == attemptID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeBankRepo struct {
	banks map[uint]*model.QuestionBank
}

func (r *fakeBankRepo) Create(b *model.QuestionBank) error { return nil }

func (r *fakeBankRepo) FindByID(id uint) (*model.QuestionBank, error) {
	return r.FindByIDWithQuestions(id)
}

func (r *fakeBankRepo) FindByIDWithQuestions(id uint) (*model.QuestionBank, error) {
	b, ok := r.banks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *fakeBankRepo) FindByOwner(uint) ([]model.QuestionBank, error) { return nil, nil }

func attemptFixture() (AttemptService, *fakeAttemptRepo, *fakeDetailRepo) {
	bank := &model.QuestionBank{
		ID:      10,
		OwnerID: 1,
		Title:   "Biology basics",
		Questions: []model.Question{
			*booleanQuestion(true),
			*singleChoiceQuestion("Paris", "London", "Paris", "Rome"),
			*multipleChoiceQuestion("A", "B"),
		},
	}
	for i := range bank.Questions {
		bank.Questions[i].ID = uint(i + 1)
		bank.Questions[i].BankID = bank.ID
	}

	attemptRepo := newFakeAttemptRepo()
	detailRepo := newFakeDetailRepo()
	bankRepo := &fakeBankRepo{banks: map[uint]*model.QuestionBank{bank.ID: bank}}
	svc := NewAttemptService(attemptRepo, detailRepo, bankRepo, NewVerifyService())
	return svc, attemptRepo, detailRepo
}

func TestStartAttempt(t *testing.T) {
	svc, _, _ := attemptFixture()

	resp, err := svc.StartAttempt(10, 1)
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, uint(10), resp.BankID)
	assert.Equal(t, "in_progress", resp.Status)
	assert.Equal(t, 3, resp.TotalCount)
}

func TestStartAttemptUnknownBank(t *testing.T) {
	svc, _, _ := attemptFixture()
	_, err := svc.StartAttempt(99, 1)
	assert.Error(t, err)
}

func TestSubmitAnswersGradesAndFinalizes(t *testing.T) {
	svc, attemptRepo, detailRepo := attemptFixture()

	started, err := svc.StartAttempt(10, 1)
	require.NoError(t, err)

	result, err := svc.SubmitAnswers(started.ID, 1, []dto.AnswerSubmission{
		{QuestionID: 1, UserAnswer: "true"},
		{QuestionID: 2, UserAnswer: "London"},
		{QuestionID: 3, UserAnswer: "B,A"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.CorrectCount)
	assert.Equal(t, 3, result.TotalCount)
	require.Len(t, result.Answers, 3)
	assert.True(t, result.Answers[0].IsCorrect)
	assert.False(t, result.Answers[1].IsCorrect)
	assert.True(t, result.Answers[2].IsCorrect)

	// Every graded answer leaves a detail row.
	details, err := detailRepo.FindByAttemptID(started.ID)
	require.NoError(t, err)
	assert.Len(t, details, 3)

	stored, err := attemptRepo.FindByID(started.ID)
	require.NoError(t, err)
	assert.Equal(t, "finalized", stored.Status)
	assert.Equal(t, 2, stored.CorrectCount)
	require.NotNil(t, stored.SubmittedAt)
}

func TestSubmitAnswersSkipsForeignQuestions(t *testing.T) {
	svc, _, detailRepo := attemptFixture()

	started, err := svc.StartAttempt(10, 1)
	require.NoError(t, err)

	// Question 42 is not in the bank; it is skipped, not graded false.
	result, err := svc.SubmitAnswers(started.ID, 1, []dto.AnswerSubmission{
		{QuestionID: 1, UserAnswer: "true"},
		{QuestionID: 42, UserAnswer: "whatever"},
	})
	require.NoError(t, err)

	assert.Len(t, result.Answers, 1)
	assert.Equal(t, 1, result.CorrectCount)

	details, err := detailRepo.FindByAttemptID(started.ID)
	require.NoError(t, err)
	assert.Len(t, details, 1)
}

func TestSubmitAnswersOwnershipAndFinalization(t *testing.T) {
	svc, _, _ := attemptFixture()

	started, err := svc.StartAttempt(10, 1)
	require.NoError(t, err)

	// Another user cannot submit into this attempt.
	_, err = svc.SubmitAnswers(started.ID, 2, []dto.AnswerSubmission{{QuestionID: 1, UserAnswer: "true"}})
	assert.Error(t, err)

	_, err = svc.SubmitAnswers(started.ID, 1, []dto.AnswerSubmission{{QuestionID: 1, UserAnswer: "true"}})
	require.NoError(t, err)

	// A finalized attempt rejects further submissions.
	_, err = svc.SubmitAnswers(started.ID, 1, []dto.AnswerSubmission{{QuestionID: 1, UserAnswer: "false"}})
	assert.Error(t, err)
}
