package provider

import (
	"fmt"
	"strings"

	"github.com/vuthanhlam/quizbank/internal/model"
)

const systemPrompt = "You are an expert question-bank author. You produce exam questions as strict JSON and never include commentary outside the JSON payload."

var typeInstructions = map[string]string{
	model.TypeSingleChoice:   "single-choice questions with exactly 4 options and exactly one correct answer",
	model.TypeMultipleChoice: "multiple-choice questions with 4 to 6 options and two or more correct answers",
	model.TypeTrueFalse:      "true/false statements whose correct answer is the string \"true\" or \"false\"",
	model.TypeFillBlank:      "fill-in-the-blank questions; list every acceptable answer",
	model.TypeShortAnswer:    "short-answer questions with one concise reference answer",
}

// BuildUserPrompt renders the user message for a generation request. Every
// vendor shares this prompt; only the transport envelope differs.
func BuildUserPrompt(req model.GenerationRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate exactly %d exam questions about %q.\n", req.Count, req.Subject)
	fmt.Fprintf(&b, "Difficulty: %s.\n", req.Difficulty)

	if len(req.Types) > 0 {
		b.WriteString("Question types to produce: ")
		var parts []string
		for _, t := range req.Types {
			if instr, ok := typeInstructions[t]; ok {
				parts = append(parts, instr)
			} else {
				parts = append(parts, t)
			}
		}
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(".\n")
	}

	lang := req.Language
	if lang == "" {
		lang = "English"
	}
	fmt.Fprintf(&b, "Write all question text, options and explanations in %s.\n", lang)

	if req.CustomPrompt != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", req.CustomPrompt)
	}

	b.WriteString(`
Respond with a single JSON object of this exact shape and nothing else:
{"questions": [{"question": "...", "type": "single_choice|multiple_choice|true_false|fill_blank|short_answer", "options": ["..."], "correct_answer": "... or [\"...\"]", "explanation": "...", "difficulty": "easy|medium|hard"}]}
Do not wrap the JSON in markdown fences.`)

	return b.String()
}
