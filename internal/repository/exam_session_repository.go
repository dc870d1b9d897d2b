package repository

import (
	"context"
	"exam_prep_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamSessionRepository struct {
	DB *gorm.DB
}

func NewExamSessionRepository(db *gorm.DB) *ExamSessionRepository {
	return &ExamSessionRepository{DB: db}
}

// 复习卷重新生成时整行覆盖，已软删除的记录也一并恢复
var reviewUpsertColumns = []string{
	"user_id", "cycle", "test_number", "subject", "status", "source",
	"total_questions", "score", "questions", "completed_at",
	"updated_at", "deleted_at",
}

// FetchCompletedSessions 返回用户本周期常规考试（卷号 1-4）的全部完成记录，
// 同一套卷的多次作答按完成时间倒序排列
func (r *ExamSessionRepository) FetchCompletedSessions(ctx context.Context, userID uint, cycle int) ([]model.ExamSession, error) {
	var sessions []model.ExamSession
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND cycle = ? AND status = ?", userID, cycle, model.SessionStatusCompleted).
		Where("test_number BETWEEN ? AND ?", 1, model.RegularTestsPerCycle).
		Order("test_number ASC, completed_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// UpsertReviewSession 以主键为冲突键写入复习卷
func (r *ExamSessionRepository) UpsertReviewSession(ctx context.Context, session *model.ExamSession) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(reviewUpsertColumns),
		}).
		Create(session).Error
}

func (r *ExamSessionRepository) FindByID(ctx context.Context, id string) (*model.ExamSession, error) {
	var session model.ExamSession
	err := r.DB.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ExamSessionRepository) ListByUserAndCycle(ctx context.Context, userID uint, cycle int) ([]model.ExamSessionSummary, error) {
	var rows []model.ExamSessionSummary
	err := r.DB.WithContext(ctx).
		Model(&model.ExamSession{}).
		Select("id, cycle, test_number, subject, status, source, total_questions, score, completed_at").
		Where("user_id = ? AND cycle = ?", userID, cycle).
		Order("test_number ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}
