package review

import "fmt"

// FillResult 单科补题结果
type FillResult struct {
	Questions  []SelectedQuestion
	Backfilled int // 从剩余题池补入的原题数
	Duplicated int // 合成的重复题数
}

// UsedFallbackDuplication 是否动用了重复题
func (r FillResult) UsedFallbackDuplication() bool {
	return r.Duplicated > 0
}

// SyntheticRef 重复题的合成标识，与任何题库ID都不会冲突
func SyntheticRef(subject Subject, n int, originalRef string) string {
	return fmt.Sprintf("%s-dup-%d-%s", subject, n, originalRef)
}

// FillShortfall 保证单科恰好 quota 道题：
// 先从题池中尚未入选的题目补足，仍不够时循环复制已入选题目。
// taken 为其他科目已入选的题目标识。题池为空时无法补足，返回的题量会少于 quota。
func FillShortfall(subject Subject, selected []SelectedQuestion, pool []AttemptRecord, taken map[string]bool, quota int) FillResult {
	out := make([]SelectedQuestion, len(selected), max(quota, len(selected)))
	copy(out, selected)
	if len(out) >= quota {
		return FillResult{Questions: out[:quota]}
	}

	refs := make(map[string]bool, len(out))
	texts := make(map[string]bool, len(out))
	for _, q := range out {
		refs[q.Ref] = true
		texts[q.Question.Question] = true
	}

	res := FillResult{}
	for _, a := range Rank(Dedup(pool)) {
		if len(out) == quota {
			break
		}
		if refs[a.Ref()] || taken[a.Ref()] || texts[a.Question.Question] {
			continue
		}
		out = append(out, newSelected(subject, a))
		refs[a.Ref()] = true
		texts[a.Question.Question] = true
		res.Backfilled++
	}

	originals := out[:len(out):len(out)]
	for n := 0; len(out) < quota && len(originals) > 0; n++ {
		src := originals[n%len(originals)]
		dup := src
		dup.Synthetic = true
		dup.Ref = SyntheticRef(subject, n+1, src.Ref)
		dup.Question.UserAnswer = nil
		dup.Question.IsCorrect = false
		out = append(out, dup)
		res.Duplicated++
	}

	res.Questions = out
	return res
}

// Validate 最终校验。超出题量的科目截断到 quota；
// 任一科不足 quota 即返回 SelectionError，不允许生成残缺试卷。
func Validate(bySubject map[Subject][]SelectedQuestion, quota int) (map[Subject][]SelectedQuestion, error) {
	out := make(map[Subject][]SelectedQuestion, len(Subjects))
	for _, subject := range Subjects {
		qs := bySubject[subject]
		if len(qs) > quota {
			qs = qs[:quota]
		}
		if len(qs) < quota {
			return nil, &SelectionError{Subject: subject, Got: len(qs), Want: quota}
		}
		out[subject] = qs
	}
	return out, nil
}

// AssignIDs 物理 1-60、化学 61-120、生物 121-180 依次重新编号
func AssignIDs(bySubject map[Subject][]SelectedQuestion) []SelectedQuestion {
	var ordered []SelectedQuestion
	next := 1
	for _, subject := range Subjects {
		for _, q := range bySubject[subject] {
			q.Question.ID = next
			q.Question.UserAnswer = nil
			q.Question.IsCorrect = false
			ordered = append(ordered, q)
			next++
		}
	}
	return ordered
}
