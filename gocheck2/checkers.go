// Extensions to the go-check unittest framework.
//
// NOTE: see https://github.com/go-check/check/pull/6 for reasons why these
// checkers live here.
package gocheck2

import (
	"reflect"

	. "gopkg.in/check.v1"
)

// -----------------------------------------------------------------------
// IsTrue / IsFalse checker.

type isBoolValueChecker struct {
	*CheckerInfo
	expected bool
}

func (checker *isBoolValueChecker) Check(
	params []interface{},
	names []string) (
	result bool,
	error string) {

	obtained, ok := params[0].(bool)
	if !ok {
		return false, "Argument to " + checker.Name + " must be bool"
	}

	return obtained == checker.expected, ""
}

// The IsTrue checker verifies that the obtained value is true.
//
// For example:
//
//     c.Assert(value, IsTrue)
//
var IsTrue Checker = &isBoolValueChecker{
	&CheckerInfo{Name: "IsTrue", Params: []string{"obtained"}},
	true,
}

// The IsFalse checker verifies that the obtained value is false.
//
// For example:
//
//     c.Assert(value, IsFalse)
//
var IsFalse Checker = &isBoolValueChecker{
	&CheckerInfo{Name: "IsFalse", Params: []string{"obtained"}},
	false,
}

// -----------------------------------------------------------------------
// SameContainer checker.

type sameContainerChecker struct {
	*CheckerInfo
}

func (checker *sameContainerChecker) Check(
	params []interface{},
	names []string) (
	result bool,
	error string) {

	obtained := reflect.ValueOf(params[0])
	expected := reflect.ValueOf(params[1])
	if !expected.IsValid() ||
		(expected.Kind() != reflect.Slice && expected.Kind() != reflect.Array) {
		return false, "Expected value of " + checker.Name + " must be a slice or array"
	}
	if !obtained.IsValid() || obtained.Type() != expected.Type() {
		return false, ""
	}
	return obtained.Len() == expected.Len(), ""
}

// The SameContainer checker verifies that the obtained value has exactly
// the concrete container type and the length of the expected one. The
// elements themselves are not compared.
//
// For example:
//
//     c.Assert(ToText(tuple), SameContainer, tuple)
//
var SameContainer Checker = &sameContainerChecker{
	&CheckerInfo{Name: "SameContainer", Params: []string{"obtained", "expected"}},
}
