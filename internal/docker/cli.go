package docker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"dockstats/internal/models"
)

// StatsFormat makes `docker stats` print one JSON object per container.
const StatsFormat = `{"container":{{json .Name}},"cpuPerc":{{json .CPUPerc}},"memPerc":{{json .MemPerc}},"netIO":{{json .NetIO}}}`

// CLISource shells out to the docker binary.
type CLISource struct {
	bin string
	log *slog.Logger
}

func NewCLISource(bin string, logger *slog.Logger) *CLISource {
	if bin == "" {
		bin = "docker"
	}
	return &CLISource{bin: bin, log: logger}
}

func (s *CLISource) Name() string { return "cli" }

func (s *CLISource) Stats(ctx context.Context) ([]models.RawContainerStat, error) {
	out, err := s.run(ctx, "stats", "--format", StatsFormat, "--no-stream")
	if err != nil {
		return nil, err
	}
	return DecodeStatsLines(out)
}

func (s *CLISource) Ping(ctx context.Context) error {
	_, err := s.run(ctx, "version", "--format", "{{.Server.Version}}")
	return err
}

func (s *CLISource) run(ctx context.Context, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		s.log.Error("docker command failed",
			"command", args[0],
			"err", err,
			"stdout", stdout.String(),
			"stderr", stderr.String(),
		)
		return nil, &SourceError{
			Source: s.Name(),
			Op:     s.bin + " " + args[0],
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.Bytes(), nil
}

// DecodeStatsLines decodes the output of `docker stats --format StatsFormat`.
// Blank lines are skipped.
func DecodeStatsLines(out []byte) ([]models.RawContainerStat, error) {
	stats := make([]models.RawContainerStat, 0)
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var st models.RawContainerStat
		if err := json.Unmarshal([]byte(text), &st); err != nil {
			return nil, &SourceError{Source: "cli", Op: fmt.Sprintf("decode line %d", line), Err: err}
		}
		stats = append(stats, st)
	}
	if err := sc.Err(); err != nil {
		return nil, &SourceError{Source: "cli", Op: "read output", Err: err}
	}
	return stats, nil
}
