package review

import (
	"context"
	"encoding/json"
	"fmt"

	"exam_prep_backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionStore 考试记录存储
type SessionStore interface {
	// FetchCompletedSessions 返回用户本周期内第 1-4 套卷的全部已完成记录
	FetchCompletedSessions(ctx context.Context, userID uint, cycle int) ([]model.ExamSession, error)
	// UpsertReviewSession 按 ID 写入复习卷，已存在则覆盖
	UpsertReviewSession(ctx context.Context, session *model.ExamSession) error
}

// Result 一次成功生成的结果
type Result struct {
	SessionID string
	Session   *model.ExamSession
	Questions []SelectedQuestion

	UsedFallbackDuplication map[Subject]bool
	Duplicated              map[Subject]int
	Backfilled              map[Subject]int
	Discarded               int // 按 UnknownDiscard 策略丢弃的题目数

	States []State
}

// Generator 复习卷生成流程的控制器，单次调用内只读、单线程
type Generator struct {
	store      SessionStore
	classifier *Classifier
	policy     UnknownSubjectPolicy
}

func NewGenerator(store SessionStore, classifier *Classifier, policy UnknownSubjectPolicy) *Generator {
	if classifier == nil {
		classifier = NewClassifier()
	}
	if policy == "" {
		policy = UnknownAsBiology
	}
	return &Generator{store: store, classifier: classifier, policy: policy}
}

// ReviewSessionID 由用户和周期推导出的固定ID，重复生成会覆盖同一条记录
func ReviewSessionID(userID uint, cycle int) string {
	name := fmt.Sprintf("exam-prep/review-test/%d/%d", userID, cycle)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// SourceTag 复习卷来源标记
func SourceTag(cycle int) string {
	return fmt.Sprintf("cycle%d_review_test%d", cycle, model.ReviewTestNumber)
}

// Generate 执行完整流程。失败时状态机进入 Failed 并返回对应的类型化错误，
// 在写入之前失败的流程不会调用 UpsertReviewSession。
func (g *Generator) Generate(ctx context.Context, userID uint, cycle int, observer Observer) (*Result, error) {
	m := NewMachine(observer)
	res, err := g.run(ctx, m, userID, cycle)
	if err != nil {
		_ = m.Advance(StateFailed)
		return nil, err
	}
	res.States = m.History()
	return res, nil
}

func (g *Generator) run(ctx context.Context, m *Machine, userID uint, cycle int) (*Result, error) {
	if err := m.Advance(StateCheckingEligibility); err != nil {
		return nil, err
	}
	fetched, err := g.store.FetchCompletedSessions(ctx, userID, cycle)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch", Err: err}
	}
	sessions := LatestPerExam(fetched)
	if len(sessions) < RequiredExams {
		return nil, &EligibilityError{Cycle: cycle, Found: len(sessions), Required: RequiredExams}
	}

	if err := m.Advance(StateExtracting); err != nil {
		return nil, err
	}
	attempts, err := Extract(sessions)
	if err != nil {
		return nil, err
	}

	if err := m.Advance(StateSelecting); err != nil {
		return nil, err
	}
	pools, discarded := Partition(attempts, g.classifier, g.policy)
	selected := make(map[Subject][]SelectedQuestion, len(Subjects))
	for _, subject := range Subjects {
		selected[subject] = SelectTop(subject, pools[subject], QuestionsPerSubject)
	}

	if err := m.Advance(StateBalancing); err != nil {
		return nil, err
	}
	res := &Result{
		UsedFallbackDuplication: make(map[Subject]bool, len(Subjects)),
		Duplicated:              make(map[Subject]int, len(Subjects)),
		Backfilled:              make(map[Subject]int, len(Subjects)),
		Discarded:               discarded,
	}
	taken := make(map[string]bool)
	for _, subject := range Subjects {
		for _, q := range selected[subject] {
			taken[q.Ref] = true
		}
	}
	for _, subject := range Subjects {
		fill := FillShortfall(subject, selected[subject], pools[subject], taken, QuestionsPerSubject)
		selected[subject] = fill.Questions
		res.UsedFallbackDuplication[subject] = fill.UsedFallbackDuplication()
		res.Duplicated[subject] = fill.Duplicated
		res.Backfilled[subject] = fill.Backfilled
		for _, q := range fill.Questions {
			taken[q.Ref] = true
		}
	}

	if err := m.Advance(StateValidating); err != nil {
		return nil, err
	}
	validated, err := Validate(selected, QuestionsPerSubject)
	if err != nil {
		return nil, err
	}
	res.Questions = AssignIDs(validated)

	if err := m.Advance(StatePersisting); err != nil {
		return nil, err
	}
	session, err := BuildSession(userID, cycle, res.Questions)
	if err != nil {
		return nil, &PersistenceError{Op: "encode", Err: err}
	}
	if err := g.store.UpsertReviewSession(ctx, session); err != nil {
		return nil, &PersistenceError{Op: "write", Err: err}
	}
	res.SessionID = session.ID
	res.Session = session

	if err := m.Advance(StateDone); err != nil {
		return nil, err
	}
	return res, nil
}

// BuildSession 组装待写入的复习卷记录
func BuildSession(userID uint, cycle int, questions []SelectedQuestion) (*model.ExamSession, error) {
	records := make([]model.QuestionRecord, 0, len(questions))
	for _, q := range questions {
		records = append(records, q.Record())
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}

	session := &model.ExamSession{
		UserID:         userID,
		Cycle:          cycle,
		TestNumber:     model.ReviewTestNumber,
		Subject:        model.SubjectMixed,
		Status:         model.SessionStatusNotStarted,
		Source:         SourceTag(cycle),
		TotalQuestions: len(records),
		Questions:      datatypes.JSON(payload),
	}
	session.ID = ReviewSessionID(userID, cycle)
	return session, nil
}
