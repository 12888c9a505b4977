// Package errors implements errors that carry the stack trace of the point
// where they were created, along with an optional wrapped cause.
//
// NOTE: This package intentionally mirrors the standard "errors" module.
// Every package of this module creates its errors through it.
package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"runtime"
	"sync"
)

// MdsError exposes additional information about an error.
type MdsError interface {
	// Returns the error message without the stack trace.
	GetMessage() string

	// Returns the wrapped error, or nil if this does not wrap another error.
	GetInner() error

	// Implements the built-in error interface.
	Error() string

	// Returns the wrapped error so that the standard library's errors.Is
	// and errors.As can walk the chain.
	Unwrap() error

	// Returns stack frames of the point where the error was created.
	StackFrames() []StackFrame

	// Returns a printable rendition of StackFrames. The format looks like:
	// github.com/mdsplus/mdsgo/dynlib.(*Resolver).ResolveAndLoad
	//   /src/mdsgo/dynlib/resolver.go:87 +0xbf9
	// Do not parse it; use StackFrames instead.
	GetStack() string
}

// Represents a single stack frame. Func is nil for frames inlined into their
// caller.
type StackFrame struct {
	PC         uintptr
	Func       *runtime.Func
	FuncName   string
	File       string
	LineNumber int
}

type baseError struct {
	msg   string
	inner error

	stack       []uintptr
	framesOnce  sync.Once
	stackFrames []StackFrame
}

// GetMessage returns the error string without stack trace information.
func GetMessage(err interface{}) string {
	switch e := err.(type) {
	case MdsError:
		return extractFullErrorMessage(e, false)
	case runtime.Error:
		return e.Error()
	case error:
		return e.Error()
	default:
		return "Passed a non-error to GetMessage"
	}
}

// Error returns the message of this error and every error it wraps, followed
// by the stack trace of the innermost MdsError.
func (e *baseError) Error() string {
	return extractFullErrorMessage(e, true)
}

func (e *baseError) GetMessage() string {
	return e.msg
}

func (e *baseError) GetInner() error {
	return e.inner
}

func (e *baseError) Unwrap() error {
	return e.inner
}

// Frames are resolved with runtime.CallersFrames so that calls inlined into
// their caller still show up as frames of their own.
func (e *baseError) StackFrames() []StackFrame {
	e.framesOnce.Do(func() {
		if len(e.stack) == 0 {
			return
		}
		frames := runtime.CallersFrames(e.stack)
		for {
			frame, more := frames.Next()
			e.stackFrames = append(e.stackFrames, StackFrame{
				PC:         frame.PC,
				Func:       frame.Func,
				FuncName:   frame.Function,
				File:       frame.File,
				LineNumber: frame.Line,
			})
			if !more {
				break
			}
		}
	})
	return e.stackFrames
}

func (e *baseError) GetStack() string {
	buf := bytes.NewBuffer(make([]byte, 0, 256))
	for _, frame := range e.StackFrames() {
		_, _ = buf.WriteString(frame.FuncName)
		_, _ = buf.WriteString("\n")
		fmt.Fprintf(buf, "\t%s:%d +0x%x\n",
			frame.File, frame.LineNumber, frame.PC)
	}
	return buf.String()
}

// New returns an error with the given message and the current stack trace.
func New(msg string) MdsError {
	return new(nil, msg)
}

// Same as New, but with fmt.Printf-style parameters.
func Newf(format string, args ...interface{}) MdsError {
	return new(nil, fmt.Sprintf(format, args...))
}

// Wrap wraps another error in a new MdsError.
func Wrap(err error, msg string) MdsError {
	return new(err, msg)
}

// Same as Wrap, but with fmt.Printf-style parameters.
func Wrapf(err error, format string, args ...interface{}) MdsError {
	return new(err, fmt.Sprintf(format, args...))
}

// The stack is captured relative to the exported constructor, so there
// must be exactly one level of indirection between it and this function.
func new(err error, msg string) *baseError {
	stack := make([]uintptr, 200)
	stackLength := runtime.Callers(3, stack)
	return &baseError{
		msg:   msg,
		stack: stack[:stackLength],
		inner: err,
	}
}

// Builds the message for e by traversing all of its inner errors. With
// includeStack the stack of the deepest MdsError in the chain is appended.
func extractFullErrorMessage(e MdsError, includeStack bool) string {
	var ok bool
	var lastErr MdsError
	errMsg := bytes.NewBuffer(make([]byte, 0, 1024))

	mdsErr := e
	for {
		lastErr = mdsErr
		errMsg.WriteString(mdsErr.GetMessage())

		innerErr := mdsErr.GetInner()
		if innerErr == nil {
			break
		}
		errMsg.WriteString("\n")
		mdsErr, ok = innerErr.(MdsError)
		if !ok {
			errMsg.WriteString(innerErr.Error())
			break
		}
	}
	if includeStack {
		errMsg.WriteString("\nORIGINAL STACK TRACE:\n")
		errMsg.WriteString(lastErr.GetStack())
	}
	return errMsg.String()
}

// Wrapped chains deeper than this are assumed to be cyclic.
const maxChainDepth = 100

// RootError follows the chain of wrapped errors down to the innermost one,
// e.g. the dlerror message below a failed load attempt. Errors combining
// several causes end the chain.
func RootError(err error) error {
	for i := 0; i < maxChainDepth; i++ {
		inner := stderrors.Unwrap(err)
		if inner == nil {
			return err
		}
		err = inner
	}
	return err
}
