package review

import (
	"fmt"
	"testing"

	"exam_prep_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupPrefersIncorrect(t *testing.T) {
	pool := []AttemptRecord{
		attempt("same text", model.PriorityLow, true, 1, 1),
		attempt("other", model.PriorityLow, true, 1, 2),
		attempt("same text", model.PriorityLow, false, 3, 9),
		attempt("same text", model.PriorityLow, true, 4, 5),
	}

	got := Dedup(pool)
	require.Len(t, got, 2)
	assert.Equal(t, "same text", got[0].Question.Question)
	assert.False(t, got[0].WasCorrect)
	assert.Equal(t, 3, got[0].Origin)
	assert.Equal(t, "other", got[1].Question.Question)
}

func TestDedupAllCorrectKeepsOne(t *testing.T) {
	pool := []AttemptRecord{
		attempt("same", model.PriorityLow, true, 1, 1),
		attempt("same", model.PriorityHigh, true, 2, 1),
	}
	got := Dedup(pool)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Origin)
}

func TestRank(t *testing.T) {
	pool := []AttemptRecord{
		attempt("correct high", model.PriorityHigh, true, 1, 1),
		attempt("wrong low", model.PriorityLow, false, 1, 2),
		attempt("wrong missing", "", false, 1, 3),
		attempt("wrong high", model.PriorityHigh, false, 1, 4),
		attempt("wrong medium", model.PriorityMedium, false, 1, 5),
	}

	var texts []string
	for _, a := range Rank(pool) {
		texts = append(texts, a.Question.Question)
	}
	assert.Equal(t, []string{"wrong high", "wrong medium", "wrong low", "wrong missing", "correct high"}, texts)
}

func TestSelectTopPrefersHighPriorityForLastSlot(t *testing.T) {
	var pool []AttemptRecord
	for i := 0; i < QuestionsPerSubject-1; i++ {
		pool = append(pool, attempt(fmt.Sprintf("filler %d", i), model.PriorityHigh, false, 1, i+1))
	}
	pool = append(pool,
		attempt("low priority miss", model.PriorityLow, false, 2, 1),
		attempt("high priority miss", model.PriorityHigh, false, 2, 2),
	)

	selected := SelectTop(SubjectPhysics, pool, QuestionsPerSubject)
	require.Len(t, selected, QuestionsPerSubject)

	texts := map[string]bool{}
	for _, q := range selected {
		texts[q.Question.Question] = true
	}
	assert.True(t, texts["high priority miss"])
	assert.False(t, texts["low priority miss"])
}

func TestSelectTopResetsAnswerState(t *testing.T) {
	pool := []AttemptRecord{
		attempt("a", model.PriorityLow, true, 1, 1),
		attempt("b", model.PriorityLow, false, 1, 2),
	}

	selected := SelectTop(SubjectChemistry, pool, QuestionsPerSubject)
	require.Len(t, selected, 2)
	for _, q := range selected {
		assert.Nil(t, q.Question.UserAnswer)
		assert.False(t, q.Question.IsCorrect)
		assert.Equal(t, SubjectChemistry, q.Subject)
		assert.False(t, q.Synthetic)
	}
	assert.Equal(t, "b", selected[0].Question.Question)
	assert.True(t, selected[1].WasCorrect)
}

func TestSelectedQuestionRecord(t *testing.T) {
	q := SelectedQuestion{
		Question: model.QuestionRecord{
			ID:           4,
			Question:     "q",
			SubjectLabel: "Physics",
			UserAnswer:   strPtr("C"),
			IsCorrect:    true,
			TimeSpent:    30,
		},
		Subject:   SubjectPhysics,
		Ref:       "physics-dup-1-exam1-q4",
		Synthetic: true,
	}

	r := q.Record()
	assert.Equal(t, "physics", r.Subject)
	assert.Empty(t, r.SubjectLabel)
	assert.Equal(t, "physics-dup-1-exam1-q4", r.SourceRef)
	assert.True(t, r.IsDuplicate)
	assert.Nil(t, r.UserAnswer)
	assert.False(t, r.IsCorrect)
	assert.Zero(t, r.TimeSpent)
}
