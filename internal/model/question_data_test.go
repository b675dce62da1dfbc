package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionDataValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    QuestionData
		wantErr bool
	}{
		{
			name: "valid single choice",
			data: QuestionData{
				Kind:   TypeSingleChoice,
				Choice: &ChoiceData{Options: []string{"A", "B"}, CorrectAnswers: []string{"A"}},
			},
		},
		{
			name: "single choice with two answers",
			data: QuestionData{
				Kind:   TypeSingleChoice,
				Choice: &ChoiceData{Options: []string{"A", "B"}, CorrectAnswers: []string{"A", "B"}},
			},
			wantErr: true,
		},
		{
			name: "choice with one option",
			data: QuestionData{
				Kind:   TypeMultipleChoice,
				Choice: &ChoiceData{Options: []string{"A"}, CorrectAnswers: []string{"A"}},
			},
			wantErr: true,
		},
		{
			name: "valid boolean",
			data: QuestionData{Kind: TypeTrueFalse, Boolean: &BooleanData{CorrectAnswer: true}},
		},
		{
			name:    "kind without matching payload",
			data:    QuestionData{Kind: TypeTrueFalse, Choice: &ChoiceData{Options: []string{"A", "B"}, CorrectAnswers: []string{"A"}}},
			wantErr: true,
		},
		{
			name:    "fill blank without answers",
			data:    QuestionData{Kind: TypeFillBlank, FillBlank: &FillBlankData{}},
			wantErr: true,
		},
		{
			name:    "short answer without reference",
			data:    QuestionData{Kind: TypeShortAnswer, ShortAnswer: &ShortAnswerData{}},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			data:    QuestionData{Kind: "matching", ShortAnswer: &ShortAnswerData{ReferenceAnswer: "x"}},
			wantErr: true,
		},
		{
			name: "empty value is a legacy row",
			data: QuestionData{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuestionDataScanValue(t *testing.T) {
	data := QuestionData{
		Kind:   TypeMultipleChoice,
		Choice: &ChoiceData{Options: []string{"A", "B", "C"}, CorrectAnswers: []string{"A", "C"}},
	}

	value, err := data.Value()
	require.NoError(t, err)

	var scanned QuestionData
	require.NoError(t, scanned.Scan([]byte(value.(string))))
	assert.Equal(t, data, scanned)

	// Postgres drivers may hand back a string.
	var fromString QuestionData
	require.NoError(t, fromString.Scan(value.(string)))
	assert.Equal(t, data, fromString)
}

func TestQuestionDataScanNull(t *testing.T) {
	scanned := QuestionData{Kind: TypeTrueFalse, Boolean: &BooleanData{}}
	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.Empty())
	assert.Empty(t, scanned.Kind)

	assert.Error(t, new(QuestionData).Scan(42))
}

func TestGenerationTaskClone(t *testing.T) {
	usage := 120
	task := &GenerationTask{
		TaskID: "t1",
		Status: TaskStatusProcessing,
		Questions: []Question{
			{
				Text: "Q1",
				Type: TypeMultipleChoice,
				Data: QuestionData{
					Kind: TypeMultipleChoice,
					Choice: &ChoiceData{
						Options:        []string{"A", "B", "C"},
						CorrectAnswers: []string{"A", "C"},
					},
				},
				TokenUsage: &usage,
			},
			{
				Text: "Q2",
				Type: TypeFillBlank,
				Data: QuestionData{
					Kind:      TypeFillBlank,
					FillBlank: &FillBlankData{AcceptedAnswers: []string{"chlorophyll"}},
				},
			},
		},
		Request: GenerationRequest{Types: []string{TypeTrueFalse}},
	}

	cp := task.Clone()
	cp.Questions[0].Text = "mutated"
	cp.Questions[0].Data.Choice.Options[0] = "mutated"
	cp.Questions[0].Data.Choice.CorrectAnswers = append(cp.Questions[0].Data.Choice.CorrectAnswers, "mutated")
	*cp.Questions[0].TokenUsage = 999
	cp.Questions[1].Data.FillBlank.AcceptedAnswers[0] = "mutated"
	cp.Request.Types[0] = "mutated"
	cp.Status = TaskStatusFailed

	assert.Equal(t, "Q1", task.Questions[0].Text)
	assert.Equal(t, []string{"A", "B", "C"}, task.Questions[0].Data.Choice.Options)
	assert.Equal(t, []string{"A", "C"}, task.Questions[0].Data.Choice.CorrectAnswers)
	assert.Equal(t, 120, *task.Questions[0].TokenUsage)
	assert.Equal(t, []string{"chlorophyll"}, task.Questions[1].Data.FillBlank.AcceptedAnswers)
	assert.Equal(t, TypeTrueFalse, task.Request.Types[0])
	assert.Equal(t, TaskStatusProcessing, task.Status)
}

func TestGenerationTaskTerminal(t *testing.T) {
	for status, want := range map[string]bool{
		TaskStatusPending:        false,
		TaskStatusProcessing:     false,
		TaskStatusCompleted:      true,
		TaskStatusPartialSuccess: true,
		TaskStatusFailed:         true,
	} {
		assert.Equal(t, want, (&GenerationTask{Status: status}).Terminal(), status)
	}
}
