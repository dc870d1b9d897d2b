package model

import "time"

// GenerationProgress 复习卷生成进度，仅供前端展示
type GenerationProgress struct {
	UserID    uint      `json:"userId"`
	Cycle     int       `json:"cycle"`
	State     string    `json:"state"`
	Percent   int       `json:"percent"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
