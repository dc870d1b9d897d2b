package review

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"exam_prep_backend/internal/model"
)

const (
	// RequiredExams 生成复习卷前必须完成的考试套数
	RequiredExams = model.RegularTestsPerCycle
	// QuestionsPerSubject 复习卷每科题量
	QuestionsPerSubject = 60
	// TotalQuestions 复习卷总题量
	TotalQuestions = QuestionsPerSubject * 3
)

// AttemptRecord 一道作答过的题目
type AttemptRecord struct {
	Question   model.QuestionRecord
	WasCorrect bool
	Origin     int // 来源试卷在本周期中的位置 1-4
}

// Ref 题目的身份标识。同一题库ID视为同一题；
// 没有题库ID时退化为“来源试卷+试卷内序号”。
func (a AttemptRecord) Ref() string {
	if a.Question.QuestionID != "" {
		return a.Question.QuestionID
	}
	return fmt.Sprintf("exam%d-q%d", a.Origin, a.Question.ID)
}

// LatestPerExam 同一套卷有多次完成记录时只保留最近一次，结果按卷号升序
func LatestPerExam(sessions []model.ExamSession) []model.ExamSession {
	latest := make(map[int]model.ExamSession)
	for _, s := range sessions {
		if s.TestNumber < 1 || s.TestNumber > RequiredExams {
			continue
		}
		cur, ok := latest[s.TestNumber]
		if !ok || completedAfter(s, cur) {
			latest[s.TestNumber] = s
		}
	}

	out := make([]model.ExamSession, 0, len(latest))
	for _, s := range latest {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TestNumber < out[j].TestNumber })
	return out
}

func completedAfter(a, b model.ExamSession) bool {
	switch {
	case a.CompletedAt == nil:
		return false
	case b.CompletedAt == nil:
		return true
	default:
		return a.CompletedAt.After(*b.CompletedAt)
	}
}

// Extract 把本周期四套已完成试卷的题目展开为作答记录
func Extract(sessions []model.ExamSession) ([]AttemptRecord, error) {
	if len(sessions) != RequiredExams {
		return nil, &EligibilityError{Found: len(sessions), Required: RequiredExams}
	}

	var attempts []AttemptRecord
	for i, s := range sessions {
		questions, err := decodeQuestions(s)
		if err != nil {
			return nil, err
		}
		for _, q := range questions {
			attempts = append(attempts, AttemptRecord{
				Question:   q,
				WasCorrect: q.IsCorrect,
				Origin:     i + 1,
			})
		}
	}
	return attempts, nil
}

func decodeQuestions(s model.ExamSession) ([]model.QuestionRecord, error) {
	raw := bytes.TrimSpace(s.Questions)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, &DataIntegrityError{SessionID: s.ID, Reason: "missing question payload"}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DataIntegrityError{SessionID: s.ID, Reason: "question payload is not an array"}
	}
	if len(items) == 0 {
		return nil, &DataIntegrityError{SessionID: s.ID, Reason: "question payload is empty"}
	}

	questions := make([]model.QuestionRecord, 0, len(items))
	for i, item := range items {
		var q model.QuestionRecord
		if err := json.Unmarshal(item, &q); err != nil {
			return nil, &DataIntegrityError{
				SessionID: s.ID,
				Reason:    fmt.Sprintf("question %d is malformed: %v", i, err),
			}
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// Partition 逐题判断科目并分入三科题池，返回被策略丢弃的题目数
func Partition(attempts []AttemptRecord, c *Classifier, policy UnknownSubjectPolicy) (map[Subject][]AttemptRecord, int) {
	pools := make(map[Subject][]AttemptRecord, len(Subjects))
	dropped := 0
	for _, a := range attempts {
		subject, ok := policy.Resolve(c.Classify(a.Question))
		if !ok {
			dropped++
			continue
		}
		pools[subject] = append(pools[subject], a)
	}
	return pools, dropped
}
