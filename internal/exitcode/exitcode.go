package exitcode

import (
	"errors"
	"fmt"
)

// Exit codes, one per failure class. Scripts wrapping autodeploy rely on
// these staying stable.
const (
	OK              = 0
	Generic         = 1
	MissingTool     = 2
	InvalidInput    = 3
	SSHConnect      = 4
	GitFailure      = 5
	RsyncFailure    = 6
	UnsupportedHost = 7
	NoComposeTool   = 8
	DockerInactive  = 9
	ProxyInactive   = 10
	HealthFailed    = 11
)

// Error tags an error with the exit code its failure class maps to.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error from a format string.
func New(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

// Wrap tags an existing error with a code. Returns nil if err is nil.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// CodeOf extracts the exit code from an error chain.
// Untagged non-nil errors map to Generic.
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return Generic
}
