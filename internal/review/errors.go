package review

import "fmt"

// EligibilityError 本周期已完成的考试不足四套
type EligibilityError struct {
	Cycle    int
	Found    int
	Required int
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("cycle %d: %d of %d exams completed", e.Cycle, e.Found, e.Required)
}

// DataIntegrityError 考试记录缺少题目数据或数据格式错误
type DataIntegrityError struct {
	SessionID string
	Reason    string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("exam session %s: %s", e.SessionID, e.Reason)
}

// SelectionError 补足重复题后仍无法满足每科题量
type SelectionError struct {
	Subject Subject
	Got     int
	Want    int
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("subject %s: selected %d of %d questions", e.Subject, e.Got, e.Want)
}

// PersistenceError 考试记录读写失败，Op 为 fetch、encode 或 write
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
