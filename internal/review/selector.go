package review

import (
	"sort"

	"exam_prep_backend/internal/model"
)

// SelectedQuestion 入选复习卷的题目
type SelectedQuestion struct {
	Question  model.QuestionRecord
	Subject   Subject
	Ref       string // 原题标识；重复题为合成标识
	Synthetic bool
	// 以下仅用于排序和统计，不写入复习卷
	WasCorrect bool
	Origin     int
}

// Record 生成写入复习卷的题目快照，作答状态一律清空
func (q SelectedQuestion) Record() model.QuestionRecord {
	r := q.Question
	r.Subject = string(q.Subject)
	r.SubjectLabel = ""
	r.SourceRef = q.Ref
	r.IsDuplicate = q.Synthetic
	r.UserAnswer = nil
	r.IsCorrect = false
	r.TimeSpent = 0
	return r
}

func newSelected(subject Subject, a AttemptRecord) SelectedQuestion {
	q := a.Question
	q.UserAnswer = nil
	q.IsCorrect = false
	q.TimeSpent = 0
	return SelectedQuestion{
		Question:   q,
		Subject:    subject,
		Ref:        a.Ref(),
		WasCorrect: a.WasCorrect,
		Origin:     a.Origin,
	}
}

func priorityRank(level string) int {
	switch level {
	case model.PriorityHigh:
		return 0
	case model.PriorityMedium:
		return 1
	default:
		// Low 以及缺失的优先级
		return 2
	}
}

func correctRank(wasCorrect bool) int {
	if wasCorrect {
		return 1
	}
	return 0
}

// Dedup 按题干去重，保留首次出现的位置；
// 若同一题干既有答对也有答错，保留答错的那一次。
func Dedup(pool []AttemptRecord) []AttemptRecord {
	index := make(map[string]int, len(pool))
	out := make([]AttemptRecord, 0, len(pool))
	for _, a := range pool {
		i, seen := index[a.Question.Question]
		if !seen {
			index[a.Question.Question] = len(out)
			out = append(out, a)
			continue
		}
		if out[i].WasCorrect && !a.WasCorrect {
			out[i] = a
		}
	}
	return out
}

// Rank 答错优先，其次按优先级 High > Medium > Low，同级保持原顺序
func Rank(pool []AttemptRecord) []AttemptRecord {
	ranked := make([]AttemptRecord, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := correctRank(ranked[i].WasCorrect), correctRank(ranked[j].WasCorrect)
		if ci != cj {
			return ci < cj
		}
		return priorityRank(ranked[i].Question.PriorityLevel) < priorityRank(ranked[j].Question.PriorityLevel)
	})
	return ranked
}

// SelectTop 对单科题池去重排序后取前 quota 道，不足时全部返回
func SelectTop(subject Subject, pool []AttemptRecord, quota int) []SelectedQuestion {
	ranked := Rank(Dedup(pool))
	if len(ranked) > quota {
		ranked = ranked[:quota]
	}
	selected := make([]SelectedQuestion, 0, quota)
	for _, a := range ranked {
		selected = append(selected, newSelected(subject, a))
	}
	return selected
}
