package model

// 优先级取值
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// QuestionRecord 考试记录中保存的单道题目快照（题库导出 + 作答结果）
// swagger:model QuestionRecord
type QuestionRecord struct {
	ID            int      `json:"id"`                   // 试卷内序号，答题界面按序号定位题目
	QuestionID    string   `json:"questionId,omitempty"` // 题库ID，可能为空
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Subject       string   `json:"subject,omitempty"`
	// 旧版题库导出使用首字母大写的键
	SubjectLabel  string   `json:"Subject,omitempty"`
	ChapterName   string   `json:"chapterName,omitempty"`
	TopicName     string   `json:"topicName,omitempty"`
	PriorityLevel string   `json:"priorityLevel,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	ConceptTags   []string `json:"conceptTags,omitempty"`

	UserAnswer *string `json:"userAnswer"`
	IsCorrect  bool    `json:"isCorrect"`
	TimeSpent  int     `json:"timeSpent,omitempty"` // 秒

	// 复习卷专用字段
	SourceRef   string `json:"sourceRef,omitempty"`
	IsDuplicate bool   `json:"isDuplicate,omitempty"`
}
