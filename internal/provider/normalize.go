package provider

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vuthanhlam/quizbank/internal/model"
)

const snippetLimit = 200

// ParseError is returned whenever model output cannot be turned into
// questions. It carries a bounded snippet of the offending text, never the
// full payload.
type ParseError struct {
	Reason  string
	Snippet string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %s (snippet: %q)", e.Reason, e.Snippet)
}

func newParseError(reason, text string) *ParseError {
	s := strings.TrimSpace(text)
	if len(s) > snippetLimit {
		s = s[:snippetLimit]
	}
	return &ParseError{Reason: reason, Snippet: s}
}

// Field alias tables. Order matters: the first alias that resolves wins.
// Kept as data so a new vendor quirk is a table entry, not a code path.
var (
	questionAliases    = []string{"question", "question_text", "text", "title", "stem", "题目", "问题"}
	typeAliases        = []string{"type", "question_type", "kind", "题型", "类型"}
	optionsAliases     = []string{"options", "choices", "answers", "candidates", "选项"}
	correctAliases     = []string{"correct_answer", "correctanswers", "correct_answers", "answer", "correct", "right_answer", "正确答案", "答案"}
	explanationAliases = []string{"explanation", "analysis", "rationale", "reason", "解析", "解释"}
	difficultyAliases  = []string{"difficulty", "level", "难度"}
	rootAliases        = []string{"questions", "data", "result"}
)

// NormalizeResponse extracts a question list from arbitrary model output:
// markdown fences and surrounding prose are tolerated, as is a bare JSON
// array instead of the requested {"questions": [...]} object. Always
// returns a value/error pair; it never panics past this boundary.
func NormalizeResponse(raw string) ([]model.GeneratedQuestion, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, newParseError("empty response", raw)
	}

	payload := stripCodeFence(raw)
	payload = locateJSON(payload)
	if payload == "" {
		return nil, newParseError("no JSON payload found", raw)
	}

	var root interface{}
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		return nil, newParseError("invalid JSON: "+err.Error(), payload)
	}

	items, err := questionItems(root, payload)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, newParseError("payload contains zero questions", payload)
	}

	questions := make([]model.GeneratedQuestion, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, newParseError(fmt.Sprintf("question %d is not an object", i), payload)
		}
		q, err := normalizeQuestion(obj)
		if err != nil {
			return nil, newParseError(fmt.Sprintf("question %d: %s", i, err.Error()), payload)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// stripCodeFence returns the contents of the first fenced block, or the
// input unchanged when no fence is present.
func stripCodeFence(text string) string {
	start := strings.Index(text, "```")
	if start == -1 {
		return text
	}
	rest := text[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		// Skip the language tag line (```json).
		firstLine := strings.TrimSpace(rest[:nl])
		if !strings.ContainsAny(firstLine, "{[") {
			rest = rest[nl+1:]
		}
	}
	if end := strings.Index(rest, "```"); end != -1 {
		return rest[:end]
	}
	return rest
}

// locateJSON finds the outermost array or object by bracket scanning. The
// earlier start token wins; the matching closer is the last occurrence.
func locateJSON(text string) string {
	objStart := strings.IndexByte(text, '{')
	arrStart := strings.IndexByte(text, '[')

	start, closer := objStart, byte('}')
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start, closer = arrStart, ']'
	}
	if start == -1 {
		return ""
	}
	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return ""
	}
	return text[start : end+1]
}

// questionItems resolves the question list from the parsed root: a bare
// array is the list itself; an object is searched for a questions/data/
// result property, case-insensitively.
func questionItems(root interface{}, payload string) ([]interface{}, error) {
	switch v := root.(type) {
	case []interface{}:
		return v, nil
	case map[string]interface{}:
		for _, alias := range rootAliases {
			if val, ok := lookupField(v, alias); ok {
				if arr, ok := val.([]interface{}); ok {
					return arr, nil
				}
			}
		}
		return nil, newParseError("object has no questions array", payload)
	default:
		return nil, newParseError("JSON root is neither array nor object", payload)
	}
}

// lookupField resolves a key case-insensitively, ignoring underscores so
// correct_answer also matches correctAnswer.
func lookupField(obj map[string]interface{}, key string) (interface{}, bool) {
	if v, ok := obj[key]; ok {
		return v, true
	}
	fold := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), "_", "")
	}
	want := fold(key)
	for k, v := range obj {
		if fold(k) == want {
			return v, true
		}
	}
	return nil, false
}

func resolveString(obj map[string]interface{}, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := lookupField(obj, alias); ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func normalizeQuestion(obj map[string]interface{}) (model.GeneratedQuestion, error) {
	var q model.GeneratedQuestion

	q.Text = resolveString(obj, questionAliases)
	if q.Text == "" {
		return q, fmt.Errorf("missing question text")
	}

	q.Type = canonicalType(resolveString(obj, typeAliases))
	q.Explanation = resolveString(obj, explanationAliases)
	q.Difficulty = canonicalDifficulty(resolveString(obj, difficultyAliases))

	for _, alias := range optionsAliases {
		if v, ok := lookupField(obj, alias); ok {
			q.Options = coerceStringList(v)
			if len(q.Options) > 0 {
				break
			}
		}
	}

	for _, alias := range correctAliases {
		if v, ok := lookupField(obj, alias); ok {
			q.CorrectAnswers = coerceStringList(v)
			if len(q.CorrectAnswers) > 0 {
				break
			}
		}
	}
	if len(q.CorrectAnswers) == 0 {
		return q, fmt.Errorf("missing correct answer")
	}

	if q.Type == "" {
		q.Type = inferType(q)
	}
	return q, nil
}

// coerceStringList turns an options/answers value into an ordered string
// list. Accepted shapes: array of strings or objects, a delimited string,
// or a keyed object ({"A": "...", "B": "..."}).
func coerceStringList(v interface{}) []string {
	switch val := v.(type) {
	case []interface{}:
		var out []string
		for _, item := range val {
			switch it := item.(type) {
			case string:
				if s := strings.TrimSpace(it); s != "" {
					out = append(out, s)
				}
			case map[string]interface{}:
				// {"text": "..."} or {"label": "A", "value": "..."}
				for _, k := range []string{"text", "value", "content", "option"} {
					if s, ok := lookupField(it, k); ok {
						if str := stringify(s); str != "" {
							out = append(out, str)
							break
						}
					}
				}
			default:
				if s := stringify(item); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case map[string]interface{}:
		// Keyed options object: sort by key for a stable order.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			if s := stringify(val[k]); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return splitDelimited(val)
	default:
		if s := stringify(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

func splitDelimited(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, sep := range []string{"\n", ";", "|", ","} {
		if strings.Contains(s, sep) {
			parts := strings.Split(s, sep)
			var out []string
			for _, p := range parts {
				if t := strings.TrimSpace(p); t != "" {
					out = append(out, t)
				}
			}
			if len(out) > 1 {
				return out
			}
		}
	}
	return []string{s}
}

var typeSynonyms = map[string]string{
	"single_choice":   model.TypeSingleChoice,
	"singlechoice":    model.TypeSingleChoice,
	"single":          model.TypeSingleChoice,
	"choice":          model.TypeSingleChoice,
	"mcq":             model.TypeSingleChoice,
	"multiple_choice": model.TypeMultipleChoice,
	"multiplechoice":  model.TypeMultipleChoice,
	"multi":           model.TypeMultipleChoice,
	"multi_select":    model.TypeMultipleChoice,
	"true_false":      model.TypeTrueFalse,
	"truefalse":       model.TypeTrueFalse,
	"boolean":         model.TypeTrueFalse,
	"judge":           model.TypeTrueFalse,
	"fill_blank":      model.TypeFillBlank,
	"fillblank":       model.TypeFillBlank,
	"fill_in_blank":   model.TypeFillBlank,
	"blank":           model.TypeFillBlank,
	"short_answer":    model.TypeShortAnswer,
	"shortanswer":     model.TypeShortAnswer,
	"essay":           model.TypeShortAnswer,
	"open":            model.TypeShortAnswer,
}

func canonicalType(raw string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	return typeSynonyms[key]
}

func canonicalDifficulty(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return ""
}

// inferType is the fallback for untyped elements. Heuristic only; rows
// with an explicit tag never reach it.
func inferType(q model.GeneratedQuestion) string {
	if len(q.Options) > 0 {
		if len(q.CorrectAnswers) > 1 {
			return model.TypeMultipleChoice
		}
		return model.TypeSingleChoice
	}
	if len(q.CorrectAnswers) == 1 {
		switch strings.ToLower(q.CorrectAnswers[0]) {
		case "true", "false":
			return model.TypeTrueFalse
		}
	}
	return model.TypeShortAnswer
}
