package review

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"exam_prep_backend/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func strPtr(s string) *string { return &s }

func newQuestion(id int, subject, text, priority string, correct bool) model.QuestionRecord {
	answer := "A"
	if !correct {
		answer = "B"
	}
	return model.QuestionRecord{
		ID:            id,
		Question:      text,
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: "A",
		Subject:       subject,
		PriorityLevel: priority,
		UserAnswer:    strPtr(answer),
		IsCorrect:     correct,
		TimeSpent:     42,
	}
}

func newSession(t *testing.T, testNumber int, questions []model.QuestionRecord) model.ExamSession {
	t.Helper()
	payload, err := json.Marshal(questions)
	require.NoError(t, err)
	completed := time.Date(2026, 1, testNumber, 10, 0, 0, 0, time.UTC)
	s := model.ExamSession{
		UserID:      7,
		Cycle:       1,
		TestNumber:  testNumber,
		Subject:     model.SubjectMixed,
		Status:      model.SessionStatusCompleted,
		Questions:   datatypes.JSON(payload),
		CompletedAt: &completed,
	}
	s.ID = fmt.Sprintf("session-%d", testNumber)
	return s
}

// cycleSessions 生成四套卷，每套每科 perSubject 道互不重复的题目，
// 每科第一套卷的题目全部答错，其余答对。
func cycleSessions(t *testing.T, perSubject map[string]int) []model.ExamSession {
	t.Helper()
	var sessions []model.ExamSession
	for exam := 1; exam <= RequiredExams; exam++ {
		var qs []model.QuestionRecord
		id := 1
		for _, subject := range []string{"physics", "chemistry", "biology"} {
			for i := 0; i < perSubject[subject]; i++ {
				text := fmt.Sprintf("%s exam %d question %d", subject, exam, i)
				qs = append(qs, newQuestion(id, subject, text, model.PriorityMedium, exam != 1))
				id++
			}
		}
		sessions = append(sessions, newSession(t, exam, qs))
	}
	return sessions
}

type fakeStore struct {
	sessions  []model.ExamSession
	fetchErr  error
	upsertErr error
	upserted  []*model.ExamSession
}

func (f *fakeStore) FetchCompletedSessions(_ context.Context, _ uint, _ int) ([]model.ExamSession, error) {
	return f.sessions, f.fetchErr
}

func (f *fakeStore) UpsertReviewSession(_ context.Context, s *model.ExamSession) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, s)
	return nil
}

func attempt(text, priority string, correct bool, origin, id int) AttemptRecord {
	return AttemptRecord{
		Question:   newQuestion(id, "physics", text, priority, correct),
		WasCorrect: correct,
		Origin:     origin,
	}
}
