package main

import (
	"bytes"
	"errors"
	"testing"

	"hydrate/internal/validation"
)

func TestRunCleanExit(t *testing.T) {
	var buf bytes.Buffer
	code := run([]string{"validate_any_usage"}, &buf, func(string, string, []string) ([]validation.Error, error) {
		return nil, nil
	})
	if code != 0 {
		t.Fatalf("clean validation should exit 0, got %d: %s", code, buf.String())
	}
}

func TestRunReportsViolations(t *testing.T) {
	var buf bytes.Buffer
	code := run([]string{"validate_any_usage"}, &buf, func(string, string, []string) ([]validation.Error, error) {
		return []validation.Error{{File: "internal/engine/row.go", Line: 12, Message: "disallowed any usage", Code: "func Value(pos int) any {"}}, nil
	})
	if code != 1 {
		t.Fatalf("violations should exit 1, got %d", code)
	}
	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("internal/engine/row.go:12")) {
		t.Fatalf("output should locate the violation, got %q", out)
	}
}

func TestRunValidatorFailure(t *testing.T) {
	var buf bytes.Buffer
	code := run([]string{"validate_any_usage"}, &buf, func(string, string, []string) ([]validation.Error, error) {
		return nil, errors.New("broken allowlist")
	})
	if code != 1 {
		t.Fatalf("validator failure should exit 1, got %d", code)
	}
}

func TestRunEmptyRoots(t *testing.T) {
	var buf bytes.Buffer
	code := run([]string{"validate_any_usage", "-roots", " , "}, &buf, func(string, string, []string) ([]validation.Error, error) {
		t.Fatalf("validator must not run without roots")
		return nil, nil
	})
	if code != 1 {
		t.Fatalf("empty roots should exit 1, got %d", code)
	}
}

func TestSplitRoots(t *testing.T) {
	roots := splitRoots("pkg/mapping, internal/engine ,,")
	if len(roots) != 2 || roots[0] != "pkg/mapping" || roots[1] != "internal/engine" {
		t.Fatalf("unexpected roots: %v", roots)
	}
}
