package errs

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

const (
	traceSkip     = 3
	trackPrealloc = 50
)

type sFrame struct {
	filename string
	method   string
	line     int
}

type stack []sFrame

func (s stack) String() string {
	var sb strings.Builder

	for i, frame := range s {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s\n\t%s:%d", frame.method, frame.filename, frame.line)
	}

	return sb.String()
}

type errorWithTrace struct {
	error

	trace stack
}

func (e *errorWithTrace) Unwrap() error {
	return e.error
}

// NewStack attaches the caller's stack to err. Errors that already carry a
// stack are returned as is.
func NewStack(err error) error {
	if err == nil {
		return nil
	}

	var errWT *errorWithTrace

	// Add trace only once
	if errors.As(err, &errWT) {
		return err
	}

	return &errorWithTrace{
		error: err,
		trace: stackTrace(traceSkip),
	}
}

// Trace returns the stack recorded by NewStack, or "" when there is none.
func Trace(err error) string {
	var errWT *errorWithTrace
	if !errors.As(err, &errWT) {
		return ""
	}

	return errWT.trace.String()
}

// Field renders err together with its recorded stack for zap.
func Field(err error) zap.Field {
	trace := Trace(err)
	if trace == "" {
		return zap.Error(err)
	}

	return zap.Dict("error", zap.String("message", err.Error()), zap.String("trace", trace))
}

func stackTrace(skip int) stack {
	pc := make([]uintptr, trackPrealloc)
	n := runtime.Callers(skip, pc)
	pc = pc[:n]

	frames := runtime.CallersFrames(pc)
	stack := make(stack, 0, n)

	for {
		frame, more := frames.Next()

		stack = append(stack, sFrame{filename: frame.File, method: frame.Function, line: frame.Line})

		if !more {
			break
		}
	}

	return stack
}
