package roster

import "fmt"

// ValidationError 签到输入不合法，不会修改任何状态
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
