package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Question types.
const (
	TypeSingleChoice   = "single_choice"
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeFillBlank      = "fill_blank"
	TypeShortAnswer    = "short_answer"
)

// Difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ChoiceData holds the payload for single- and multiple-choice questions.
type ChoiceData struct {
	Options        []string `json:"options"`
	CorrectAnswers []string `json:"correct_answers"`
}

type BooleanData struct {
	CorrectAnswer bool `json:"correct_answer"`
}

// FillBlankData lists every answer accepted for the blank.
type FillBlankData struct {
	AcceptedAnswers []string `json:"accepted_answers"`
}

type ShortAnswerData struct {
	ReferenceAnswer string `json:"reference_answer"`
}

// QuestionData is the typed answer payload of a question, stored as one
// jsonb column. Kind selects the variant; exactly one variant pointer is
// set for a valid value.
type QuestionData struct {
	Kind        string           `json:"kind"`
	Choice      *ChoiceData      `json:"choice,omitempty"`
	Boolean     *BooleanData     `json:"boolean,omitempty"`
	FillBlank   *FillBlankData   `json:"fill_blank,omitempty"`
	ShortAnswer *ShortAnswerData `json:"short_answer,omitempty"`
}

// Empty reports whether no variant is populated, which is the case for
// legacy rows graded from the flat columns.
func (d QuestionData) Empty() bool {
	return d.Choice == nil && d.Boolean == nil && d.FillBlank == nil && d.ShortAnswer == nil
}

// clone returns a copy sharing no pointers or slices with the receiver.
func (d QuestionData) clone() QuestionData {
	cp := d
	if d.Choice != nil {
		cp.Choice = &ChoiceData{
			Options:        append([]string(nil), d.Choice.Options...),
			CorrectAnswers: append([]string(nil), d.Choice.CorrectAnswers...),
		}
	}
	if d.Boolean != nil {
		b := *d.Boolean
		cp.Boolean = &b
	}
	if d.FillBlank != nil {
		cp.FillBlank = &FillBlankData{AcceptedAnswers: append([]string(nil), d.FillBlank.AcceptedAnswers...)}
	}
	if d.ShortAnswer != nil {
		s := *d.ShortAnswer
		cp.ShortAnswer = &s
	}
	return cp
}

// Validate checks that the variant matches Kind and carries a usable
// answer. An empty value is valid so legacy rows still load.
func (d QuestionData) Validate() error {
	if d.Empty() {
		return nil
	}
	switch d.Kind {
	case TypeSingleChoice, TypeMultipleChoice:
		if d.Choice == nil {
			return fmt.Errorf("question data: kind %s without choice payload", d.Kind)
		}
		if len(d.Choice.Options) < 2 {
			return fmt.Errorf("question data: choice question needs at least 2 options")
		}
		if len(d.Choice.CorrectAnswers) == 0 {
			return fmt.Errorf("question data: choice question has no correct answer")
		}
		if d.Kind == TypeSingleChoice && len(d.Choice.CorrectAnswers) != 1 {
			return fmt.Errorf("question data: single choice needs exactly one correct answer")
		}
	case TypeTrueFalse:
		if d.Boolean == nil {
			return fmt.Errorf("question data: kind %s without boolean payload", d.Kind)
		}
	case TypeFillBlank:
		if d.FillBlank == nil || len(d.FillBlank.AcceptedAnswers) == 0 {
			return fmt.Errorf("question data: fill blank has no accepted answers")
		}
	case TypeShortAnswer:
		if d.ShortAnswer == nil || d.ShortAnswer.ReferenceAnswer == "" {
			return fmt.Errorf("question data: short answer has no reference answer")
		}
	default:
		return fmt.Errorf("question data: unknown kind %q", d.Kind)
	}
	return nil
}

// Value implements driver.Valuer for the jsonb column.
func (d QuestionData) Value() (driver.Value, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner for the jsonb column.
func (d *QuestionData) Scan(value interface{}) error {
	if value == nil {
		*d = QuestionData{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("question data: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		*d = QuestionData{}
		return nil
	}
	return json.Unmarshal(raw, d)
}
