// Command validate_any_usage enforces the any usage allowlist across the
// materialization engine and its public mapping surface.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"hydrate/internal/validation"
)

const (
	defaultAllowlistPath = "internal/ci/any_allowlist.json"
	defaultRoots         = "pkg/mapping,internal/engine,internal/session,internal/persister,internal/cache,internal/observability"
)

var (
	exitFunc     = os.Exit
	getwd        = os.Getwd
	validateFunc = validation.ValidateAnyUsageFromFile
)

func main() {
	exitFunc(run(os.Args, os.Stderr, validateFunc))
}

func run(args []string, stderr io.Writer, validate func(string, string, []string) ([]validation.Error, error)) int {
	if len(args) == 0 {
		return 1
	}
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(stderr)
	allowlist := flags.String("allowlist", defaultAllowlistPath, "path to any usage allowlist")
	rootsFlag := flags.String("roots", defaultRoots, "comma-separated roots to scan")
	if err := flags.Parse(args[1:]); err != nil {
		return 1
	}

	roots := splitRoots(*rootsFlag)
	if len(roots) == 0 {
		_, _ = fmt.Fprintln(stderr, "no roots provided for any usage validation")
		return 1
	}
	baseDir, err := getwd()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "resolve working directory: %v\n", err)
		return 1
	}

	violations, err := validate(*allowlist, baseDir, roots)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "any usage guard failed: %v\n", err)
		return 1
	}
	if len(violations) > 0 {
		_, _ = fmt.Fprintf(stderr, "Found %d disallowed any usages:\n\n", len(violations))
		for _, violation := range violations {
			_, _ = fmt.Fprintf(stderr, "%s:%d\n", violation.File, violation.Line)
			if violation.Message != "" {
				_, _ = fmt.Fprintf(stderr, "  %s\n", violation.Message)
			}
			if violation.Code != "" {
				_, _ = fmt.Fprintf(stderr, "  Code: %s\n", violation.Code)
			}
			_, _ = fmt.Fprintln(stderr)
		}
		return 1
	}
	return 0
}

func splitRoots(raw string) []string {
	var roots []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			roots = append(roots, part)
		}
	}
	return roots
}
