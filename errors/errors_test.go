package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
)

func TestStackTrace(t *testing.T) {
	const testMsg = "could not load MdsShr"
	er := New(testMsg)

	require.Equal(t, testMsg, er.GetMessage())
	require.Contains(t, er.GetStack(), "TestStackTrace")

	frames := er.StackFrames()
	require.NotEmpty(t, frames)
	require.True(t, strings.HasSuffix(frames[0].FuncName, ".TestStackTrace"),
		"first frame is %s", frames[0].FuncName)
	require.True(t, strings.HasSuffix(frames[0].File, "errors_test.go"))
	for _, frame := range frames {
		require.NotEqual(t, "github.com/mdsplus/mdsgo/errors.New", frame.FuncName)
		require.NotEqual(t, "github.com/mdsplus/mdsgo/errors.new", frame.FuncName)
	}

	for i, r := range er.GetStack() {
		if !(unicode.IsSpace(r) || unicode.IsPrint(r)) {
			t.Errorf("stack trace has an unexpected rune at index %v (%q)", i, r)
			break
		}
	}
}

func TestWrappedError(t *testing.T) {
	const (
		innerMsg  = "dlopen failed"
		middleMsg = "loading libTreeShr.so"
		outerMsg  = "Error finding library: TreeShr"
	)
	inner := fmt.Errorf(innerMsg)
	middle := Wrap(inner, middleMsg)
	outer := Wrapf(middle, "Error finding library: %s", "TreeShr")
	errorStr := outer.Error()

	require.Contains(t, errorStr, innerMsg)
	require.Contains(t, errorStr, middleMsg+"\n")
	require.Contains(t, errorStr, outerMsg+"\n")
	require.Contains(t, errorStr, "ORIGINAL STACK TRACE:")
	require.NotContains(t, GetMessage(outer), "ORIGINAL STACK TRACE:")
}

func TestRootErrors(t *testing.T) {
	inner := fmt.Errorf("inner error")
	middle := Wrap(inner, "middle error")
	outer := Wrap(middle, "outer error")

	require.Equal(t, inner, RootError(outer))
	require.True(t, stderrors.Is(outer, inner))
	require.Equal(t, inner, RootError(inner))
}

func wrapTwice(msg string) MdsError {
	return Wrap(Wrapf(New(msg), "dlopen %s", "libMdsShr.so"), "load attempt")
}

func TestWrappedStackBelongsToCaller(t *testing.T) {
	er := wrapTwice("image not found")

	root, ok := RootError(er).(MdsError)
	require.True(t, ok)
	require.Equal(t, "image not found", root.GetMessage())
	require.True(t, strings.HasSuffix(root.StackFrames()[0].FuncName, ".wrapTwice"))
	require.Contains(t, er.Error(), "dlopen libMdsShr.so\nimage not found")
}

func TestRootErrorSystemErrors(t *testing.T) {
	require.Nil(t, RootError(nil))
	require.Equal(t, syscall.ENOENT, RootError(syscall.ENOENT))

	pathErr := &os.PathError{Op: "open", Path: "/nowhere/libMdsShr.so", Err: syscall.ENOENT}
	require.Equal(t, syscall.ENOENT, RootError(Wrap(pathErr, "load")))
}

func TestGetMessageNonError(t *testing.T) {
	require.Equal(t, "Passed a non-error to GetMessage", GetMessage(42))
	require.Equal(t, "plain", GetMessage(fmt.Errorf("plain")))
}

func TestNewf(t *testing.T) {
	er := Newf("library %q not found in %d places", "MdsShr", 3)
	require.True(t, strings.HasPrefix(er.Error(), `library "MdsShr" not found in 3 places`))
	require.Nil(t, er.GetInner())
	require.NotEmpty(t, er.StackFrames())
}
