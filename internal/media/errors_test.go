package media

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindClassification(t *testing.T) {
	err := IOError(errors.New("no such file"))
	kind, ok := KindOf(err)
	if !ok || kind != ErrIO {
		t.Fatalf("KindOf() = (%q, %v), want (%q, true)", kind, ok, ErrIO)
	}
	if !IsKind(err, ErrIO) {
		t.Fatalf("expected IsKind(err, ErrIO)")
	}
	if IsKind(err, ErrCorruptData) {
		t.Fatalf("IOError misclassified as corrupt data")
	}
}

func TestErrorUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("decoder exploded")
	err := CorruptData(cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be matchable with errors.Is")
	}
}

func TestErrorKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("loading canvas: %w", UnsupportedFormat("notes.txt"))
	if !IsKind(err, ErrUnsupportedFormat) {
		t.Fatalf("kind lost through fmt.Errorf wrapping")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Fatalf("plain error should carry no kind")
	}
}
