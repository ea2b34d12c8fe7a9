package service

import "fmt"

// ValidationError 入参校验失败，写入前拒绝
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ConflictError 唯一约束冲突（如半期标签重复），需要区别于一般失败向上抛出
type ConflictError struct {
	Resource string
	Key      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Key)
}

// NotLinkedError 半期-项目配对不存在。价格更新与工数录入都不得
// 隐式创建关联。
type NotLinkedError struct {
	PeriodLabel string
	ProjectID   string
}

func (e *NotLinkedError) Error() string {
	return fmt.Sprintf("project %s is not linked to period %s", e.ProjectID, e.PeriodLabel)
}

// BackendError 存储或网络层失败
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func backendErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}
