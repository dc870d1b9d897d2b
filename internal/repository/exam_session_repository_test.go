package repository

import (
	"context"
	"exam_prep_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// dryRunDB 只生成 SQL 不连接数据库，返回最近一条语句
func dryRunDB(t *testing.T) (*gorm.DB, func() (string, []interface{})) {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "exam:secret@tcp(127.0.0.1:3306)/exam_prep?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	var sql string
	var vars []interface{}
	capture := func(tx *gorm.DB) {
		sql = tx.Statement.SQL.String()
		vars = tx.Statement.Vars
	}
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture_query", capture))
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:capture_create", capture))
	return db, func() (string, []interface{}) { return sql, vars }
}

func TestFetchCompletedSessionsQuery(t *testing.T) {
	db, last := dryRunDB(t)
	repo := NewExamSessionRepository(db)

	_, err := repo.FetchCompletedSessions(context.Background(), 7, 2)
	require.NoError(t, err)

	sql, vars := last()
	assert.Contains(t, sql, "FROM `exam_sessions`")
	assert.Contains(t, sql, "user_id = ? AND cycle = ? AND status = ?")
	assert.Contains(t, sql, "test_number BETWEEN ? AND ?")
	assert.Contains(t, sql, "`exam_sessions`.`deleted_at` IS NULL")
	assert.Contains(t, sql, "ORDER BY test_number ASC, completed_at DESC")
	assert.Equal(t, []interface{}{uint(7), 2, model.SessionStatusCompleted, 1, model.RegularTestsPerCycle}, vars)
}

func TestUpsertReviewSessionStatement(t *testing.T) {
	db, last := dryRunDB(t)
	repo := NewExamSessionRepository(db)

	s := &model.ExamSession{
		UserID:     7,
		Cycle:      2,
		TestNumber: model.ReviewTestNumber,
		Status:     model.SessionStatusNotStarted,
		Questions:  datatypes.JSON(`[]`),
	}
	s.ID = "fixed-id"
	require.NoError(t, repo.UpsertReviewSession(context.Background(), s))

	sql, _ := last()
	assert.Contains(t, sql, "INSERT INTO `exam_sessions`")
	assert.Contains(t, sql, "ON DUPLICATE KEY UPDATE")
	for _, col := range []string{"questions", "status", "updated_at", "deleted_at"} {
		assert.Contains(t, sql, "`"+col+"`=VALUES(`"+col+"`)")
	}
	assert.Equal(t, "fixed-id", s.ID, "preset id is kept")
}

func TestListByUserAndCycleQuery(t *testing.T) {
	db, last := dryRunDB(t)
	repo := NewExamSessionRepository(db)

	_, err := repo.ListByUserAndCycle(context.Background(), 7, 1)
	require.NoError(t, err)

	sql, _ := last()
	assert.Contains(t, sql, "SELECT id, cycle, test_number")
	assert.Contains(t, sql, "ORDER BY test_number ASC, created_at ASC")
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "exam:review:lock:7:2", LockKey(7, 2))
	assert.Equal(t, "exam:review:progress:7:2", ProgressKey(7, 2))
	assert.Equal(t, "exam:review:progress:ch:7:2", ProgressChannel(7, 2))
}
