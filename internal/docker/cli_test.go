package docker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fakeDockerScript = `#!/bin/sh
if [ "$1" = "stats" ]; then
	printf '%s\n' '{"container":"web-app","cpuPerc":"5.50%","memPerc":"30.00%","netIO":"1.2kB / 3.4MB"}'
	printf '\n'
	printf '%s\n' '{"container":"db","cpuPerc":"0.10%","memPerc":"2.00%","netIO":"0B / 0B"}'
	exit 0
fi
if [ "$1" = "version" ]; then
	echo "25.0.5"
	exit 0
fi
exit 2
`

const brokenDockerScript = `#!/bin/sh
echo "Cannot connect to the Docker daemon" >&2
exit 1
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "docker")
	if err := os.WriteFile(p, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return p
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCLISourceStats(t *testing.T) {
	src := NewCLISource(writeScript(t, fakeDockerScript), discardLogger())
	stats, err := src.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("stats len = %d, want 2", len(stats))
	}
	if stats[0].Container != "web-app" || stats[0].CPUPercent != "5.50%" || stats[0].NetIO != "1.2kB / 3.4MB" {
		t.Fatalf("unexpected first record: %+v", stats[0])
	}
	if err := src.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestCLISourceFailureCarriesStderr(t *testing.T) {
	src := NewCLISource(writeScript(t, brokenDockerScript), discardLogger())
	_, err := src.Stats(context.Background())
	var se *SourceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want SourceError", err)
	}
	if se.Stderr != "Cannot connect to the Docker daemon" {
		t.Fatalf("stderr = %q", se.Stderr)
	}
}

func TestDecodeStatsLines(t *testing.T) {
	stats, err := DecodeStatsLines(nil)
	if err != nil || stats == nil || len(stats) != 0 {
		t.Fatalf("empty output: %v, %v", stats, err)
	}

	_, err = DecodeStatsLines([]byte("{\"container\":\"a\"}\nnot json\n"))
	var se *SourceError
	if !errors.As(err, &se) || !strings.Contains(se.Op, "line 2") {
		t.Fatalf("err = %v, want decode error on line 2", err)
	}
}
