// Command loader-check verifies that the loader backend selected through the
// environment opens and serves rows. SQL-backed loaders are probed with a
// seed-and-read round trip; the memory backend only needs to construct.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"hydrate/internal/infra/loader"
	"hydrate/internal/infra/loader/memory"
	"hydrate/internal/session"
)

const (
	probeEntity = "__loader_check__"
	probeID     = "probe-1"
)

var (
	exitFunc = os.Exit
	openFunc = loader.Open
)

// seeder is implemented by backends that can write rows.
type seeder interface {
	Seed(ctx context.Context, entity string, id any, row map[string]any) error
}

func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("loader-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var timeout time.Duration
	fs.DurationVar(&timeout, "timeout", 10*time.Second, "probe timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := run(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "Loader check failed: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(stdout, "Loader check passed.")
	return 0
}

func run(ctx context.Context) error {
	l, err := openFunc()
	if err != nil {
		return fmt.Errorf("open loader: %w", err)
	}
	if closer, ok := l.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}
	if mem, ok := l.(*memory.Loader); ok {
		mem.Add(probeEntity, "id", map[string]any{"id": probeID})
	}
	if s, ok := l.(seeder); ok {
		if err := s.Seed(ctx, probeEntity, probeID, map[string]any{"id": probeID}); err != nil {
			return fmt.Errorf("seed probe row: %w", err)
		}
	}
	return probe(ctx, l)
}

func probe(ctx context.Context, l session.Loader) error {
	row, err := l.LoadRow(ctx, probeEntity, probeID)
	if err != nil {
		return fmt.Errorf("load probe row: %w", err)
	}
	if row == nil {
		return fmt.Errorf("probe row %s#%s not found", probeEntity, probeID)
	}
	if row["id"] != probeID {
		return fmt.Errorf("probe row corrupted: %v", row)
	}
	return nil
}
