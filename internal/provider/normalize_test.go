package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vuthanhlam/quizbank/internal/model"
)

const wellFormedPayload = `{"questions":[{"question":"What is 2+2?","type":"single_choice","options":["3","4","5","6"],"correct_answer":"4","explanation":"Basic addition.","difficulty":"easy"}]}`

func TestNormalizeResponseBareJSON(t *testing.T) {
	questions, err := NormalizeResponse(wellFormedPayload)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, "What is 2+2?", q.Text)
	assert.Equal(t, model.TypeSingleChoice, q.Type)
	assert.Equal(t, []string{"3", "4", "5", "6"}, q.Options)
	assert.Equal(t, []string{"4"}, q.CorrectAnswers)
	assert.Equal(t, "Basic addition.", q.Explanation)
	assert.Equal(t, model.DifficultyEasy, q.Difficulty)
}

func TestNormalizeResponseExtractionRoundTrip(t *testing.T) {
	// The same payload wrapped in prose and fences must extract the same
	// list as the bare JSON.
	want, err := NormalizeResponse(wellFormedPayload)
	require.NoError(t, err)

	cases := map[string]string{
		"code fence":           "```json\n" + wellFormedPayload + "\n```",
		"fence without tag":    "```\n" + wellFormedPayload + "\n```",
		"leading prose":        "Here are your questions:\n\n" + wellFormedPayload,
		"trailing prose":       wellFormedPayload + "\n\nLet me know if you need more!",
		"prose plus fence":     "Sure! Here you go:\n```json\n" + wellFormedPayload + "\n```\nEnjoy.",
		"surrounded by quotes": "The result is: " + wellFormedPayload + " -- done",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := NormalizeResponse(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestNormalizeResponseBareArrayRoot(t *testing.T) {
	questions, err := NormalizeResponse(`[{"question":"Sky color?","type":"single_choice","options":["blue","green"],"correct_answer":"blue"}]`)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Sky color?", questions[0].Text)
}

func TestNormalizeResponseAlternateRootKeys(t *testing.T) {
	for _, key := range []string{"questions", "data", "result", "Questions", "DATA"} {
		payload := `{"` + key + `":[{"question":"Q","correct_answer":"A","options":["A","B"]}]}`
		questions, err := NormalizeResponse(payload)
		require.NoError(t, err, "root key %q", key)
		assert.Len(t, questions, 1)
	}
}

func TestNormalizeResponseFieldAliases(t *testing.T) {
	payload := `{"questions":[{"题目":"中文题","类型":"judge","正确答案":"true","解析":"说明"}]}`
	questions, err := NormalizeResponse(payload)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "中文题", questions[0].Text)
	assert.Equal(t, model.TypeTrueFalse, questions[0].Type)
	assert.Equal(t, []string{"true"}, questions[0].CorrectAnswers)
	assert.Equal(t, "说明", questions[0].Explanation)
}

func TestNormalizeResponseCamelCaseAliases(t *testing.T) {
	payload := `{"questions":[{"questionText":"Q","correctAnswer":"A","options":["A","B"]}]}`
	questions, err := NormalizeResponse(payload)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Q", questions[0].Text)
	assert.Equal(t, []string{"A"}, questions[0].CorrectAnswers)
}

func TestNormalizeResponseOptionsCoercion(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
	}{
		{
			name:    "keyed object",
			payload: `{"questions":[{"question":"Q","options":{"A":"one","B":"two"},"correct_answer":"one"}]}`,
			want:    []string{"one", "two"},
		},
		{
			name:    "delimited string",
			payload: `{"questions":[{"question":"Q","options":"one;two;three","correct_answer":"one"}]}`,
			want:    []string{"one", "two", "three"},
		},
		{
			name:    "array of objects",
			payload: `{"questions":[{"question":"Q","options":[{"text":"one"},{"text":"two"}],"correct_answer":"one"}]}`,
			want:    []string{"one", "two"},
		},
		{
			name:    "mixed array",
			payload: `{"questions":[{"question":"Q","options":["one",{"value":"two"}],"correct_answer":"one"}]}`,
			want:    []string{"one", "two"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := NormalizeResponse(tt.payload)
			require.NoError(t, err)
			require.Len(t, questions, 1)
			assert.Equal(t, tt.want, questions[0].Options)
		})
	}
}

func TestNormalizeResponseRejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"whitespace only", "   \n\t "},
		{"zero questions", `{"questions":[]}`},
		{"no questions key", `{"foo":"bar"}`},
		{"scalar root", `"just a string"`},
		{"prose without JSON", "I could not generate any questions, sorry."},
		{"truncated JSON", `{"questions":[{"question":"Q"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := NormalizeResponse(tt.input)
			assert.Error(t, err)
			assert.Nil(t, questions)
		})
	}
}

func TestNormalizeResponseSnippetBounded(t *testing.T) {
	long := "x"
	for len(long) < 1000 {
		long += long
	}
	_, err := NormalizeResponse(long)
	require.Error(t, err)

	parseErr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.LessOrEqual(t, len(parseErr.Snippet), snippetLimit)
}

func TestNormalizeResponseTypeInference(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "options with one answer",
			payload: `{"questions":[{"question":"Q","options":["a","b"],"correct_answer":"a"}]}`,
			want:    model.TypeSingleChoice,
		},
		{
			name:    "options with two answers",
			payload: `{"questions":[{"question":"Q","options":["a","b","c"],"correct_answer":["a","b"]}]}`,
			want:    model.TypeMultipleChoice,
		},
		{
			name:    "boolean answer without options",
			payload: `{"questions":[{"question":"Q","correct_answer":"true"}]}`,
			want:    model.TypeTrueFalse,
		},
		{
			name:    "free text answer",
			payload: `{"questions":[{"question":"Q","correct_answer":"photosynthesis"}]}`,
			want:    model.TypeShortAnswer,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := NormalizeResponse(tt.payload)
			require.NoError(t, err)
			require.Len(t, questions, 1)
			assert.Equal(t, tt.want, questions[0].Type)
		})
	}
}
