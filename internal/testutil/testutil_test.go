package testutil

import (
	"errors"
	"fmt"
	"testing"
)

func TestAssertEqual(t *testing.T) {
	// Should pass
	AssertEqual(t, 42, 42)
	AssertEqual(t, "hello", "hello")
	AssertEqual(t, true, true)
}

func TestAssertNil(t *testing.T) {
	// Should pass
	AssertNil(t, nil)
}

func TestAssertError(t *testing.T) {
	// Should pass
	AssertError(t, errors.New("test error"))
}

func TestAssertErrorIs(t *testing.T) {
	sentinel := errors.New("sentinel")
	wrapped := fmt.Errorf("context: %w", sentinel)

	// Should pass
	AssertErrorIs(t, wrapped, sentinel)
}

func TestAssertContains(t *testing.T) {
	// Should pass
	AssertContains(t, "hello world", "world")
	AssertContains(t, "Heltermaa - Rohuküla", "Heltermaa")
}

func TestAssertNotContains(t *testing.T) {
	// Should pass
	AssertNotContains(t, "hello world", "foo")
}

func TestAssertTrue(t *testing.T) {
	// Should pass
	AssertTrue(t, true)
	AssertTrue(t, 2 > 1)
}

func TestAssertFalse(t *testing.T) {
	// Should pass
	AssertFalse(t, false)
	AssertFalse(t, 1 == 2)
}

func TestAssertLen(t *testing.T) {
	// Should pass
	AssertLen(t, []int{1, 2, 3}, 3)
	AssertLen(t, []string{"a", "b"}, 2)
	AssertLen(t, []int{}, 0)
}
