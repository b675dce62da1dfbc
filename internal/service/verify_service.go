package service

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/vuthanhlam/quizbank/internal/model"
)

// VerifyService decides whether a raw user answer is correct for a stored
// question. It never returns an error: an unknown or malformed question
// grades as incorrect so one bad row cannot halt a batch.
type VerifyService interface {
	IsCorrect(question *model.Question, rawAnswer string) bool
}

type verifyService struct{}

func NewVerifyService() VerifyService {
	return &verifyService{}
}

func (s *verifyService) IsCorrect(question *model.Question, rawAnswer string) bool {
	answer := fold(rawAnswer)
	if answer == "" {
		return false
	}

	qType := question.Type
	if qType == "" {
		qType = typeFromData(question)
	}

	switch qType {
	case model.TypeTrueFalse:
		return s.checkBoolean(question, answer)
	case model.TypeSingleChoice:
		return s.checkSingleChoice(question, answer)
	case model.TypeMultipleChoice:
		return s.checkMultipleChoice(question, rawAnswer)
	case model.TypeFillBlank:
		return s.checkFillBlank(question, answer)
	case model.TypeShortAnswer:
		return s.checkShortAnswer(question, answer)
	default:
		return false
	}
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// typeFromData infers the grading rule for legacy rows lacking a type tag.
// Variant inspection wins; rows with neither tag nor variant fall back to
// the size of the legacy correct-answer set.
func typeFromData(q *model.Question) string {
	switch {
	case q.Data.Boolean != nil:
		return model.TypeTrueFalse
	case q.Data.FillBlank != nil:
		return model.TypeFillBlank
	case q.Data.ShortAnswer != nil:
		return model.TypeShortAnswer
	case q.Data.Choice != nil:
		if len(q.Data.Choice.CorrectAnswers) > 1 {
			return model.TypeMultipleChoice
		}
		return model.TypeSingleChoice
	}
	legacy := fold(q.LegacyCorrectAnswer)
	if legacy == "true" || legacy == "false" {
		return model.TypeTrueFalse
	}
	if strings.Contains(legacy, ",") {
		return model.TypeMultipleChoice
	}
	if q.LegacyOptions != "" {
		return model.TypeSingleChoice
	}
	return model.TypeShortAnswer
}

// checkBoolean is a strict string match against "true"/"false". "1" or
// "yes" never count, unlike fill-blank's lenient containment.
func (s *verifyService) checkBoolean(q *model.Question, answer string) bool {
	if q.Data.Boolean != nil {
		if q.Data.Boolean.CorrectAnswer {
			return answer == "true"
		}
		return answer == "false"
	}
	stored := fold(q.LegacyCorrectAnswer)
	if stored != "true" && stored != "false" {
		return false
	}
	return answer == stored
}

func (s *verifyService) correctSet(q *model.Question) []string {
	if q.Data.Choice != nil {
		return q.Data.Choice.CorrectAnswers
	}
	if q.LegacyCorrectAnswer == "" {
		return nil
	}
	return strings.Split(q.LegacyCorrectAnswer, ",")
}

func (s *verifyService) checkSingleChoice(q *model.Question, answer string) bool {
	correct := s.correctSet(q)
	if len(correct) == 0 {
		return false
	}
	return answer == fold(correct[0])
}

// checkMultipleChoice parses the user answer as a JSON array or a
// delimiter-separated list, then requires set equality with the stored
// correct answers. No partial credit.
func (s *verifyService) checkMultipleChoice(q *model.Question, rawAnswer string) bool {
	correct := s.correctSet(q)
	if len(correct) == 0 {
		return false
	}
	user := parseAnswerList(rawAnswer)
	if len(user) == 0 {
		return false
	}
	return setEqual(foldAll(user), foldAll(correct))
}

func parseAnswerList(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	var arr []string
	if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
		return arr
	}
	sep := ","
	if strings.Contains(trimmed, ";") && !strings.Contains(trimmed, ",") {
		sep = ";"
	}
	var out []string
	for _, part := range strings.Split(trimmed, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := fold(s); f != "" {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func setEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkFillBlank accepts a containment match in either direction against
// any accepted answer, tolerating extra words.
func (s *verifyService) checkFillBlank(q *model.Question, answer string) bool {
	var accepted []string
	if q.Data.FillBlank != nil {
		accepted = q.Data.FillBlank.AcceptedAnswers
	} else if q.LegacyCorrectAnswer != "" {
		accepted = []string{q.LegacyCorrectAnswer}
	}
	for _, a := range accepted {
		ref := fold(a)
		if ref == "" {
			continue
		}
		if strings.Contains(answer, ref) || strings.Contains(ref, answer) {
			return true
		}
	}
	return false
}

func (s *verifyService) checkShortAnswer(q *model.Question, answer string) bool {
	var ref string
	if q.Data.ShortAnswer != nil {
		ref = fold(q.Data.ShortAnswer.ReferenceAnswer)
	} else {
		ref = fold(q.LegacyCorrectAnswer)
	}
	if ref == "" {
		return false
	}
	return strings.Contains(answer, ref) || strings.Contains(ref, answer)
}
