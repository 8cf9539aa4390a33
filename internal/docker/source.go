package docker

import (
	"context"
	"fmt"

	"dockstats/internal/models"
)

// Source returns the current per-container stats of the runtime.
type Source interface {
	Name() string
	Stats(ctx context.Context) ([]models.RawContainerStat, error)
	Ping(ctx context.Context) error
}

// SourceError reports a failure to obtain stats from the runtime. Stderr
// holds the CLI's diagnostic output when there is any.
type SourceError struct {
	Source string
	Op     string
	Stderr string
	Err    error
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("%s source: %s: %v", e.Source, e.Op, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *SourceError) Unwrap() error { return e.Err }

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
