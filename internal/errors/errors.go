package errors

import "fmt"

// Error codes for the failure conditions a check invocation can hit.
const (
	CodeRepoUpdate  = "REPO_UPDATE_FAILED"
	CodeCommitInfo  = "COMMIT_INFO_FAILED"
	CodeStatusWrite = "STATUS_WRITE_FAILED"
	CodeLockHeld    = "LOCK_HELD"
)

type VahtiError struct {
	Code    string
	Message string
	Err     error
}

func (e *VahtiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *VahtiError) Unwrap() error {
	return e.Err
}

func New(code, message string) *VahtiError {
	return &VahtiError{Code: code, Message: message}
}

func Wrap(err error, code, message string) *VahtiError {
	return &VahtiError{Code: code, Message: message, Err: err}
}
