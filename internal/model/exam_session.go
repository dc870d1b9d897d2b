package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SessionStatusNotStarted = "not_started"
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
)

const (
	// SubjectMixed 复习卷包含三科题目
	SubjectMixed = "mixed"

	// RegularTestsPerCycle 每个周期的常规考试套数，卷号 1-4
	RegularTestsPerCycle = 4

	// ReviewTestNumber 每个周期的第五套卷为自动生成的复习卷
	ReviewTestNumber = 5
)

// ExamSession 一次考试记录，题目及作答结果以 JSON 数组保存
// swagger:model ExamSession
type ExamSession struct {
	UUIDBase
	UserID         uint           `gorm:"index:idx_exam_sessions_user_cycle;type:bigint unsigned" json:"userId"`
	Cycle          int            `gorm:"index:idx_exam_sessions_user_cycle" json:"cycle"`
	TestNumber     int            `gorm:"not null" json:"testNumber"`
	Subject        string         `gorm:"size:20" json:"subject"`
	Status         string         `gorm:"size:20;default:'not_started'" json:"status"`
	Source         string         `gorm:"size:64;index" json:"source"`
	TotalQuestions int            `gorm:"default:0" json:"totalQuestions"`
	Score          int            `gorm:"default:0" json:"score"`
	Questions      datatypes.JSON `gorm:"type:json" json:"questions"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
}

func (ExamSession) TableName() string {
	return "exam_sessions"
}

// ExamSessionSummary 列表接口返回的精简字段
type ExamSessionSummary struct {
	ID             string     `json:"id"`
	Cycle          int        `json:"cycle"`
	TestNumber     int        `json:"testNumber"`
	Subject        string     `json:"subject"`
	Status         string     `json:"status"`
	Source         string     `json:"source"`
	TotalQuestions int        `json:"totalQuestions"`
	Score          int        `json:"score"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}
