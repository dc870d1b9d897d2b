package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/review"
	"exam_prep_backend/internal/util"
	"exam_prep_backend/pkg/logger"
	"exam_prep_backend/pkg/monitoring"
	"exam_prep_backend/pkg/tracing"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExamSessionStore 复习卷生成和考试记录查询所需的存储
type ExamSessionStore interface {
	review.SessionStore
	FindByID(ctx context.Context, id string) (*model.ExamSession, error)
	ListByUserAndCycle(ctx context.Context, userID uint, cycle int) ([]model.ExamSessionSummary, error)
}

type GenerationLocker interface {
	Acquire(ctx context.Context, userID uint, cycle int, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, userID uint, cycle int, token string) error
}

type ProgressStore interface {
	Save(ctx context.Context, p *model.GenerationProgress) error
	Get(ctx context.Context, userID uint, cycle int) (*model.GenerationProgress, error)
	Subscribe(ctx context.Context, userID uint, cycle int) (<-chan *model.GenerationProgress, error)
}

type Archiver interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
}

// GenerateReviewResult 生成接口的返回内容
type GenerateReviewResult struct {
	SessionID               string          `json:"sessionId"`
	TotalQuestions          int             `json:"totalQuestions"`
	UsedFallbackDuplication map[string]bool `json:"usedFallbackDuplication"`
	States                  []string        `json:"states"`
	ArchiveURL              string          `json:"archiveUrl,omitempty"`
}

type ReviewExamService struct {
	Sessions   ExamSessionStore
	Locks      GenerationLocker
	Progress   ProgressStore
	Archive    Archiver
	classifier *review.Classifier

	mu       sync.RWMutex
	settings config.ReviewConfig
}

// NewReviewExamService locks、progress、archive 均可为 nil
func NewReviewExamService(sessions ExamSessionStore, locks GenerationLocker, progress ProgressStore, archive Archiver, cfg config.ReviewConfig) *ReviewExamService {
	return &ReviewExamService{
		Sessions:   sessions,
		Locks:      locks,
		Progress:   progress,
		Archive:    archive,
		classifier: review.NewClassifier(),
		settings:   cfg,
	}
}

// ApplyConfig 配置热更新回调
func (s *ReviewExamService) ApplyConfig(cfg *config.Config) {
	if _, err := review.ParseUnknownSubjectPolicy(cfg.Review.UnknownSubjectPolicy); err != nil {
		logger.Log.Error("Ignoring review config", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.settings = cfg.Review
	s.mu.Unlock()
	logger.Log.Info("Review config applied",
		zap.String("unknownSubjectPolicy", cfg.Review.UnknownSubjectPolicy),
		zap.Bool("archiveEnabled", cfg.Review.ArchiveEnabled))
}

func (s *ReviewExamService) Settings() config.ReviewConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// GenerateReviewTest 为用户生成本周期的第五套复习卷。
// 返回 review 包的类型化错误，或者 util.ErrGenerationInProgress。
func (s *ReviewExamService) GenerateReviewTest(ctx context.Context, userID uint, cycle int) (*GenerateReviewResult, error) {
	settings := s.Settings()
	policy, err := review.ParseUnknownSubjectPolicy(settings.UnknownSubjectPolicy)
	if err != nil {
		policy = review.UnknownAsBiology
	}

	ctx, span := tracing.Tracer.Start(ctx, "review.generate", trace.WithAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int("review.cycle", cycle),
	))
	defer span.End()
	start := time.Now()

	if s.Locks != nil {
		token, ok, err := s.Locks.Acquire(ctx, userID, cycle, settings.LockTTL())
		switch {
		case err != nil:
			// 锁不可用时继续生成，按主键覆盖写入保证结果一致
			logger.Log.Warn("Generation lock unavailable", zap.Uint("userId", userID), zap.Int("cycle", cycle), zap.Error(err))
		case !ok:
			monitoring.ReviewGenerations.WithLabelValues("in_progress").Inc()
			span.SetStatus(codes.Error, util.ErrGenerationInProgress.Error())
			return nil, util.ErrGenerationInProgress
		default:
			defer func() {
				if err := s.Locks.Release(context.WithoutCancel(ctx), userID, cycle, token); err != nil {
					logger.Log.Warn("Failed to release generation lock", zap.Uint("userId", userID), zap.Int("cycle", cycle), zap.Error(err))
				}
			}()
		}
	}

	tracker := &stageTracker{ctx: ctx, svc: s, userID: userID, cycle: cycle}
	res, err := review.NewGenerator(s.Sessions, s.classifier, policy).Generate(ctx, userID, cycle, tracker.observe)
	tracker.finish()
	monitoring.ReviewGenerationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := generationOutcome(err)
		monitoring.ReviewGenerations.WithLabelValues(outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		s.saveProgress(ctx, &model.GenerationProgress{
			UserID:  userID,
			Cycle:   cycle,
			State:   string(review.StateFailed),
			Percent: tracker.percent,
			Error:   err.Error(),
		})
		logger.Log.Warn("Review test generation failed",
			zap.Uint("userId", userID), zap.Int("cycle", cycle),
			zap.String("outcome", outcome), zap.Error(err))
		return nil, err
	}

	monitoring.ReviewGenerations.WithLabelValues("success").Inc()
	out := &GenerateReviewResult{
		SessionID:               res.SessionID,
		TotalQuestions:          len(res.Questions),
		UsedFallbackDuplication: make(map[string]bool, len(review.Subjects)),
	}
	for _, st := range res.States {
		out.States = append(out.States, string(st))
	}
	for _, subject := range review.Subjects {
		used := res.UsedFallbackDuplication[subject]
		out.UsedFallbackDuplication[string(subject)] = used
		if used {
			monitoring.ReviewFallbackDuplication.WithLabelValues(string(subject)).Inc()
			logger.Log.Warn("Review test padded with duplicate questions",
				zap.Uint("userId", userID), zap.Int("cycle", cycle),
				zap.String("subject", string(subject)),
				zap.Int("duplicated", res.Duplicated[subject]))
		}
	}
	if res.Discarded > 0 {
		logger.Log.Info("Discarded questions without a subject", zap.Uint("userId", userID), zap.Int("cycle", cycle), zap.Int("count", res.Discarded))
	}

	if settings.ArchiveEnabled {
		out.ArchiveURL = s.archive(ctx, res)
	}

	logger.Log.Info("Review test generated",
		zap.Uint("userId", userID), zap.Int("cycle", cycle),
		zap.String("sessionId", res.SessionID),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

func generationOutcome(err error) string {
	var (
		eligibility *review.EligibilityError
		integrity   *review.DataIntegrityError
		selection   *review.SelectionError
		persistence *review.PersistenceError
	)
	switch {
	case errors.As(err, &eligibility):
		return "ineligible"
	case errors.As(err, &integrity):
		return "data_integrity"
	case errors.As(err, &selection):
		return "selection"
	case errors.As(err, &persistence):
		return "persistence"
	}
	return "error"
}

// stageTracker 把状态机的切换转换为进度记录和每阶段一个 span
type stageTracker struct {
	ctx     context.Context
	svc     *ReviewExamService
	userID  uint
	cycle   int
	span    trace.Span
	percent int
}

func (t *stageTracker) observe(_, to review.State, percent int) {
	if t.span != nil {
		t.span.End()
		t.span = nil
	}
	if !to.Terminal() {
		_, t.span = tracing.Tracer.Start(t.ctx, "review."+string(to))
	}
	t.percent = percent

	// 失败由调用方带上错误信息另行记录
	if to == review.StateFailed {
		return
	}
	t.svc.saveProgress(t.ctx, &model.GenerationProgress{
		UserID:  t.userID,
		Cycle:   t.cycle,
		State:   string(to),
		Percent: percent,
	})
}

func (t *stageTracker) finish() {
	if t.span != nil {
		t.span.End()
		t.span = nil
	}
}

// saveProgress 进度仅用于展示，写入失败只记日志
func (s *ReviewExamService) saveProgress(ctx context.Context, p *model.GenerationProgress) {
	if s.Progress == nil {
		return
	}
	p.UpdatedAt = time.Now()
	if err := s.Progress.Save(context.WithoutCancel(ctx), p); err != nil {
		logger.Log.Warn("Failed to save generation progress", zap.Uint("userId", p.UserID), zap.Int("cycle", p.Cycle), zap.Error(err))
	}
}

type reviewArchive struct {
	SessionID               string          `json:"sessionId"`
	UserID                  uint            `json:"userId"`
	Cycle                   int             `json:"cycle"`
	Source                  string          `json:"source"`
	GeneratedAt             time.Time       `json:"generatedAt"`
	UsedFallbackDuplication map[string]bool `json:"usedFallbackDuplication"`
	Questions               json.RawMessage `json:"questions"`
}

func ArchiveObjectName(userID uint, cycle int, sessionID string) string {
	return fmt.Sprintf("%s/%d/cycle-%d/%s.json", util.ReviewArchivePrefix, userID, cycle, sessionID)
}

// archive 上传复习卷快照，失败只记日志
func (s *ReviewExamService) archive(ctx context.Context, res *review.Result) string {
	if s.Archive == nil || res.Session == nil {
		return ""
	}
	snapshot := reviewArchive{
		SessionID:               res.SessionID,
		UserID:                  res.Session.UserID,
		Cycle:                   res.Session.Cycle,
		Source:                  res.Session.Source,
		GeneratedAt:             time.Now(),
		UsedFallbackDuplication: make(map[string]bool, len(review.Subjects)),
		Questions:               json.RawMessage(res.Session.Questions),
	}
	for _, subject := range review.Subjects {
		snapshot.UsedFallbackDuplication[string(subject)] = res.UsedFallbackDuplication[subject]
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		logger.Log.Warn("Failed to encode review archive", zap.String("sessionId", res.SessionID), zap.Error(err))
		return ""
	}
	name := ArchiveObjectName(snapshot.UserID, snapshot.Cycle, snapshot.SessionID)
	url, err := s.Archive.Upload(ctx, name, bytes.NewReader(payload), int64(len(payload)), util.MimeJSON)
	if err != nil {
		logger.Log.Warn("Failed to upload review archive", zap.String("object", name), zap.Error(err))
		return ""
	}
	return url
}

// GetProgress 没有记录时返回 idle
func (s *ReviewExamService) GetProgress(ctx context.Context, userID uint, cycle int) (*model.GenerationProgress, error) {
	idle := &model.GenerationProgress{UserID: userID, Cycle: cycle, State: string(review.StateIdle)}
	if s.Progress == nil {
		return idle, nil
	}
	p, err := s.Progress.Get(ctx, userID, cycle)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return idle, nil
	}
	return p, nil
}

func (s *ReviewExamService) SubscribeProgress(ctx context.Context, userID uint, cycle int) (<-chan *model.GenerationProgress, error) {
	if s.Progress == nil {
		return nil, errors.New("progress store not configured")
	}
	return s.Progress.Subscribe(ctx, userID, cycle)
}

// GetSession 只允许读取自己的考试记录
func (s *ReviewExamService) GetSession(ctx context.Context, userID uint, id string) (*model.ExamSession, error) {
	session, err := s.Sessions.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}

func (s *ReviewExamService) ListSessions(ctx context.Context, userID uint, cycle int) ([]model.ExamSessionSummary, error) {
	return s.Sessions.ListByUserAndCycle(ctx, userID, cycle)
}
