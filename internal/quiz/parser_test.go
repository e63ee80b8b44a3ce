package quiz

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validQuiz = `{
  "question": "What is 3 + 4?",
  "options": [
    {"content": "6", "reason": "One short.", "isCorrect": false},
    {"content": "7", "reason": "3 + 4 = 7", "isCorrect": true},
    {"content": "8", "reason": "One over.", "isCorrect": false},
    {"content": "12", "reason": "That is 3 * 4.", "isCorrect": false}
  ]
}`

func sampleQuiz() Quiz {
	return Quiz{
		Question: "Which river flows through Cairo?",
		Options: []Option{
			{Content: "The Nile", Reason: "Cairo sits on the Nile.", IsCorrect: true},
			{Content: "The Tigris", Reason: "The Tigris flows through Baghdad.", IsCorrect: false},
			{Content: "The Niger", Reason: "The Niger is in West Africa.", IsCorrect: false},
			{Content: "The Jordan", Reason: "The Jordan is far to the east.", IsCorrect: false},
		},
	}
}

func TestParse_Valid(t *testing.T) {
	q, err := Parse(validQuiz)
	require.NoError(t, err)
	assert.Equal(t, "What is 3 + 4?", q.Question)
	require.Len(t, q.Options, OptionCount)
	assert.True(t, q.Options[1].IsCorrect)
	assert.Equal(t, "3 + 4 = 7", q.Options[1].Reason)
}

func TestParse_RoundTrip(t *testing.T) {
	withCorrect := func(q Quiz, correct ...int) Quiz {
		opts := make([]Option, len(q.Options))
		copy(opts, q.Options)
		for i := range opts {
			opts[i].IsCorrect = false
		}
		for _, i := range correct {
			opts[i].IsCorrect = true
		}
		q.Options = opts
		return q
	}

	escaped := sampleQuiz()
	escaped.Question = `Which line prints "hi\n" in C?`
	escaped.Options = []Option{
		{Content: `printf("hi\n");`, Reason: `Escapes a "newline" with a backslash \.`, IsCorrect: true},
		{Content: `puts('hi')`, Reason: "Single quotes make a char literal.", IsCorrect: false},
		{Content: "print \"hi\"", Reason: "Tab\tand newline\nin a reason.", IsCorrect: false},
		{Content: `C:\path\to\file`, Reason: "A Windows path, not code.", IsCorrect: false},
	}

	empty := sampleQuiz()
	empty.Options = []Option{
		{Content: "", Reason: "", IsCorrect: true},
		{Content: "", Reason: "Blank content.", IsCorrect: false},
		{Content: "Something", Reason: "", IsCorrect: false},
		{Content: " ", Reason: " ", IsCorrect: false},
	}

	unicode := sampleQuiz()
	unicode.Question = "Which of these are prime? «ünïcode» <b>kept</b> 日本語"
	unicode.Options[1].Content = "Åland & 7"

	tests := []struct {
		name string
		quiz Quiz
	}{
		{"first option correct", withCorrect(sampleQuiz(), 0)},
		{"last option correct", withCorrect(sampleQuiz(), 3)},
		{"two options correct", withCorrect(sampleQuiz(), 1, 2)},
		{"all options correct", withCorrect(sampleQuiz(), 0, 1, 2, 3)},
		{"escaped quotes and backslashes", escaped},
		{"empty strings", empty},
		{"non-ascii and html", withCorrect(unicode, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.quiz)
			require.NoError(t, err)

			got, err := Parse(string(data))
			require.NoError(t, err)
			assert.Equal(t, tt.quiz, *got)
		})
	}
}

func TestParse_CodeFence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"json fence", "```json\n" + validQuiz + "\n```"},
		{"bare fence", "```\n" + validQuiz + "\n```"},
		{"surrounding whitespace", "\n\n  " + validQuiz + "  \n"},
		{"preamble before fence", "Here is your quiz:\n```json\n" + validQuiz + "\n```"},
		{"text after fence", "```json\n" + validQuiz + "\n```\nLet me know if you want another one."},
		{"prose on both sides", "Sure!\n\n```JSON\n" + validQuiz + "\n```\n\nGood luck."},
		{"tag glued to payload", "Quiz: ```json" + validQuiz + "```"},
		{"unterminated fence", "Here you go:\n```json\n" + validQuiz},
		{"only first fence decoded", "```json\n" + validQuiz + "\n```\nOr:\n```json\n{}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, "What is 3 + 4?", q.Question)
		})
	}
}

func TestParse_FenceWithoutJSON(t *testing.T) {
	raw := "Here is your quiz:\n```json\nnot json\n```"
	_, err := Parse(raw)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, raw, pe.Raw)
}

func TestParse_ParseError(t *testing.T) {
	tests := []string{
		"",
		"not json at all",
		`{"question": "unterminated`,
		`{"question": "x"} trailing`,
		"Sure! Here is your quiz:",
	}
	for _, raw := range tests {
		_, err := Parse(raw)
		var pe *ParseError
		require.ErrorAs(t, err, &pe, "input %q", raw)
		assert.Equal(t, raw, pe.Raw)
		assert.True(t, IsDecodeError(err))

		var ve *ValidationError
		assert.False(t, errors.As(err, &ve), "parse failure must not be a validation error")
	}
}

func TestParse_ValidationError(t *testing.T) {
	opt := func(correct bool) map[string]any {
		return map[string]any{"content": "c", "reason": "r", "isCorrect": correct}
	}

	tests := []struct {
		name string
		doc  any
	}{
		{"missing question", map[string]any{
			"options": []any{opt(true), opt(false), opt(false), opt(false)},
		}},
		{"missing options", map[string]any{"question": "q"}},
		{"extra top-level field", map[string]any{
			"question": "q",
			"options":  []any{opt(true), opt(false), opt(false), opt(false)},
			"answer":   "c",
		}},
		{"three options", map[string]any{
			"question": "q",
			"options":  []any{opt(true), opt(false), opt(false)},
		}},
		{"five options", map[string]any{
			"question": "q",
			"options":  []any{opt(true), opt(false), opt(false), opt(false), opt(false)},
		}},
		{"no correct option", map[string]any{
			"question": "q",
			"options":  []any{opt(false), opt(false), opt(false), opt(false)},
		}},
		{"isCorrect as string", map[string]any{
			"question": "q",
			"options": []any{
				map[string]any{"content": "c", "reason": "r", "isCorrect": "true"},
				opt(false), opt(false), opt(false),
			},
		}},
		{"option missing reason", map[string]any{
			"question": "q",
			"options": []any{
				map[string]any{"content": "c", "isCorrect": true},
				opt(false), opt(false), opt(false),
			},
		}},
		{"option extra field", map[string]any{
			"question": "q",
			"options": []any{
				map[string]any{"content": "c", "reason": "r", "isCorrect": true, "score": 1},
				opt(false), opt(false), opt(false),
			},
		}},
		{"question wrong type", map[string]any{
			"question": 42,
			"options":  []any{opt(true), opt(false), opt(false), opt(false)},
		}},
		{"array instead of object", []any{"q"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.doc)
			require.NoError(t, err)

			_, err = Parse(string(raw))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, string(raw), ve.Raw)
			assert.True(t, IsDecodeError(err))
		})
	}
}

func TestParse_ParsedQuizInvariants(t *testing.T) {
	q, err := Parse(validQuiz)
	require.NoError(t, err)
	assert.Empty(t, q.Validate())
	assert.Len(t, q.Options, OptionCount)
}

func TestQuizValidate(t *testing.T) {
	q := sampleQuiz()
	assert.Empty(t, q.Validate())

	q.Options = q.Options[:2]
	q.Options[0].IsCorrect = false
	errs := q.Validate()
	assert.Len(t, errs, 2)
}

func TestMarshal_KeepsNonASCII(t *testing.T) {
	data, err := Marshal(map[string]any{"content": "Québec <1759>"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"content\": \"Québec <1759>\"\n}", string(data))
}

func TestCompiledSchemaIsCached(t *testing.T) {
	a, err := compiledSchema(Schema)
	require.NoError(t, err)
	b, err := compiledSchema(Schema)
	require.NoError(t, err)
	assert.Same(t, a, b)
}
