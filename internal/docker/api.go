package docker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"dockstats/internal/models"
)

// engineClient is the part of the Docker SDK client used here.
type engineClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerStats(ctx context.Context, containerID string, stream bool) (types.ContainerStats, error)
	Ping(ctx context.Context) (types.Ping, error)
	Close() error
}

// APISource reads stats from the Docker Engine API.
type APISource struct {
	cli engineClient
	log *slog.Logger
}

// NewAPISource connects to host, or to the DOCKER_HOST environment when host
// is empty.
func NewAPISource(host string, logger *slog.Logger) (*APISource, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, &SourceError{Source: "api", Op: "create client", Err: err}
	}
	return &APISource{cli: cli, log: logger}, nil
}

func (s *APISource) Name() string { return "api" }

func (s *APISource) Stats(ctx context.Context) ([]models.RawContainerStat, error) {
	containers, err := s.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, &SourceError{Source: s.Name(), Op: "list containers", Err: err}
	}
	out := make([]models.RawContainerStat, 0, len(containers))
	for _, c := range containers {
		st, err := s.readStats(ctx, c.ID)
		if err != nil {
			if client.IsErrNotFound(err) {
				s.log.Debug("container vanished before stats", "id", shortID(c.ID))
				continue
			}
			return nil, &SourceError{Source: s.Name(), Op: "stats " + shortID(c.ID), Err: err}
		}
		out = append(out, FormatStats(containerName(c), st))
	}
	return out, nil
}

func (s *APISource) Ping(ctx context.Context) error {
	if _, err := s.cli.Ping(ctx); err != nil {
		return &SourceError{Source: s.Name(), Op: "ping", Err: err}
	}
	return nil
}

func (s *APISource) Close() error {
	return s.cli.Close()
}

func (s *APISource) readStats(ctx context.Context, id string) (*types.StatsJSON, error) {
	resp, err := s.cli.ContainerStats(ctx, id, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var st types.StatsJSON
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

func containerName(c types.Container) string {
	if len(c.Names) > 0 {
		return strings.TrimPrefix(c.Names[0], "/")
	}
	return shortID(c.ID)
}
