package quizgen

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/quiz"
)

var lecompton = HistoryRequest{
	Content:  "Lecompton Constitution",
	Keywords: []string{"Missouri"},
}

func TestHistoryCreateQuiz_Lecompton(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(HistoryOutputExample)})
	h := NewHistory(mock, DefaultConfig(), nil)

	r, err := h.Generate(context.Background(), lecompton)
	require.NoError(t, err)
	assert.Equal(t, SourceModel, r.Source)
	assert.Nil(t, r.Cause)

	q := r.Quiz
	assert.Equal(t, "Who created the proslavery Lecompton Constitution?", q.Question)
	require.Len(t, q.Options, 4)
	assert.True(t, q.Options[1].IsCorrect)
	assert.Equal(t,
		`"Border ruffians" from Missouri who crossed the border to vote for the legalization of slavery in Kansas`,
		q.Options[1].Content)
	assert.Equal(t, 1, mock.CallCount())
}

func TestHistoryCreateQuiz_Request(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(HistoryOutputExample)})
	h := NewHistory(mock, Config{MaxTokens: 700}, nil)

	_, err := h.CreateQuiz(context.Background(), lecompton)
	require.NoError(t, err)

	req := mock.LastRequest()
	assert.Contains(t, req.System, "focusing on the subject of history")
	assert.Contains(t, req.System, "## Input\n```json\n{\n  \"content\": \"Lecompton Constitution\"")
	assert.Contains(t, req.System, "## Output\n```json\n{\n  \"question\": \"Who created the proslavery Lecompton Constitution?\"")
	assert.NotContains(t, req.System, "{{")

	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
	assert.Equal(t, "{\n  \"content\": \"Lecompton Constitution\",\n  \"keywords\": [\n    \"Missouri\"\n  ]\n}", req.Messages[0].Content)

	assert.Equal(t, 0.0, req.Temperature)
	assert.Equal(t, 700, req.MaxTokens)
	assert.Nil(t, req.Schema)
}

func TestHistoryValues(t *testing.T) {
	h := NewHistory(llm.NewMockProvider(), DefaultConfig(), nil)

	tests := []struct {
		name string
		req  HistoryRequest
		want string
	}{
		{
			name: "nil keywords become an empty list",
			req:  HistoryRequest{Content: "Treaty of Ghent"},
			want: "{\n  \"content\": \"Treaty of Ghent\",\n  \"keywords\": []\n}",
		},
		{
			name: "non-ASCII and markup kept verbatim",
			req:  HistoryRequest{Content: "Révolution <française>", Keywords: []string{"Bastille & 1789"}},
			want: "{\n  \"content\": \"Révolution <française>\",\n  \"keywords\": [\n    \"Bastille & 1789\"\n  ]\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := h.values(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, values[KeyInput])
			assert.Equal(t, HistoryOutputExample, values[KeyOutputExample])
			assert.Equal(t, HistoryInputExample, values[KeyInputExample])
		})
	}
}

func TestHistoryCreateQuiz_FallbackOnMalformedJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"question": "Who signed`)})
	h := NewHistory(mock, DefaultConfig(), nil)

	r, err := h.Generate(context.Background(), lecompton)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, r.Source)

	var pe *quiz.ParseError
	assert.ErrorAs(t, r.Cause, &pe)

	want, err := quiz.Parse(HistoryOutputExample)
	require.NoError(t, err)
	assert.Equal(t, want, r.Quiz)

	// The fallback is a substitute, not a retry.
	assert.Equal(t, 1, mock.CallCount())
}

func TestHistoryCreateQuiz_FallbackOnSchemaViolation(t *testing.T) {
	threeOptions := `{"question":"q","options":[
		{"content":"a","reason":"r","isCorrect":true},
		{"content":"b","reason":"r","isCorrect":false},
		{"content":"c","reason":"r","isCorrect":false}]}`
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(threeOptions)})
	h := NewHistory(mock, DefaultConfig(), nil)

	r, err := h.Generate(context.Background(), lecompton)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, r.Source)
	var ve *quiz.ValidationError
	assert.ErrorAs(t, r.Cause, &ve)
	assert.Equal(t, "Who created the proslavery Lecompton Constitution?", r.Quiz.Question)
	assert.Equal(t, 1, mock.CallCount())
}

func TestHistoryCreateQuizzes_OrderMatchesSlots(t *testing.T) {
	const n = 3

	var (
		mu       sync.Mutex
		finished []int
	)
	mock := llm.NewMockProviderFunc(func(ctx context.Context, _ llm.Request) llm.MockResponse {
		slot := llm.SlotFrom(ctx)
		// Later slots answer first.
		time.Sleep(time.Duration(n-slot) * 30 * time.Millisecond)

		mu.Lock()
		finished = append(finished, slot)
		mu.Unlock()

		q := quiz.Quiz{
			Question: "slot " + string(rune('0'+slot)),
			Options: []quiz.Option{
				{Content: "a", Reason: "r", IsCorrect: true},
				{Content: "b", Reason: "r"},
				{Content: "c", Reason: "r"},
				{Content: "d", Reason: "r"},
			},
		}
		data, _ := json.Marshal(q)
		return llm.MockResponse{Content: data}
	})

	h := NewHistory(mock, Config{MaxParallel: 0}, nil)
	coll, err := h.CreateQuizzes(context.Background(), lecompton, n)
	require.NoError(t, err)

	require.Len(t, coll.Quizzes, n)
	for i, q := range coll.Quizzes {
		assert.Equal(t, "slot "+string(rune('0'+i)), q.Question)
	}
	assert.Equal(t, []int{2, 1, 0}, finished)
	assert.Equal(t, n, mock.CallCount())
}

func TestHistoryCreateQuizzes_SharedBatchID(t *testing.T) {
	var (
		mu      sync.Mutex
		batches = map[string]int{}
		purpose []string
	)
	mock := llm.NewMockProviderFunc(func(ctx context.Context, _ llm.Request) llm.MockResponse {
		mu.Lock()
		batches[llm.BatchIDFrom(ctx)]++
		purpose = append(purpose, llm.PurposeFrom(ctx))
		mu.Unlock()
		return llm.MockResponse{Content: json.RawMessage(HistoryOutputExample)}
	})

	h := NewHistory(mock, DefaultConfig(), nil)
	_, err := h.CreateQuizzes(context.Background(), lecompton, 4)
	require.NoError(t, err)

	require.Len(t, batches, 1)
	for id, count := range batches {
		assert.NotEmpty(t, id)
		assert.Equal(t, 4, count)
	}
	for _, p := range purpose {
		assert.Equal(t, PurposeHistory, p)
	}
}

func TestHistoryCreateQuizzes_MixedSources(t *testing.T) {
	mock := llm.NewMockProviderFunc(func(ctx context.Context, _ llm.Request) llm.MockResponse {
		if llm.SlotFrom(ctx) == 1 {
			return llm.MockResponse{Err: &llm.ErrRateLimit{}}
		}
		return llm.MockResponse{Content: json.RawMessage(`{"question":"generated","options":[
			{"content":"a","reason":"r","isCorrect":true},
			{"content":"b","reason":"r","isCorrect":false},
			{"content":"c","reason":"r","isCorrect":false},
			{"content":"d","reason":"r","isCorrect":false}]}`)}
	})

	h := NewHistory(mock, DefaultConfig(), nil)
	coll, err := h.CreateQuizzes(context.Background(), lecompton, 3)
	require.NoError(t, err)

	assert.Equal(t, "generated", coll.Quizzes[0].Question)
	assert.Equal(t, "Who created the proslavery Lecompton Constitution?", coll.Quizzes[1].Question)
	assert.Equal(t, "generated", coll.Quizzes[2].Question)
}

func TestHistoryCreateQuizzes_InvalidCount(t *testing.T) {
	mock := llm.NewMockProvider()
	h := NewHistory(mock, DefaultConfig(), nil)

	for _, n := range []int{0, -1} {
		coll, err := h.CreateQuizzes(context.Background(), lecompton, n)
		assert.ErrorIs(t, err, ErrInvalidCount)
		assert.Nil(t, coll)
	}
	assert.Equal(t, 0, mock.CallCount())
}
