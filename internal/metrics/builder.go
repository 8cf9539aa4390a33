package metrics

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"dockstats/internal/models"
)

// Field names used in ParseError.Field.
const (
	FieldContainer  = "container"
	FieldCPUPercent = "cpu_percent"
	FieldMemPercent = "mem_percent"
	FieldNetIO      = "net_io"
)

const (
	suffixCPU       = "_cpu_usage"
	suffixMem       = "_mem_usage"
	suffixNetInput  = "_network_input_bytes"
	suffixNetOutput = "_network_output_bytes"
)

var metricNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Sample is a single gauge observation ready for registration.
type Sample struct {
	Name  string
	Help  string
	Value float64
}

// NormalizeName turns a container name into a metric name prefix.
func NormalizeName(container string) string {
	return strings.ReplaceAll(container, "-", "_")
}

// ValidName reports whether name is a legal metric identifier.
func ValidName(name string) bool {
	return metricNameRE.MatchString(name)
}

// Build parses one container's stat fields into its four gauges: CPU %,
// memory %, network input bytes and network output bytes, in that order.
// Nothing is returned for a record with any unparseable field.
func Build(stat models.RawContainerStat) ([]Sample, error) {
	prefix := NormalizeName(stat.Container)
	if stat.Container == "" || !ValidName(prefix+suffixCPU) {
		return nil, &ParseError{
			Container: stat.Container,
			Field:     FieldContainer,
			Text:      stat.Container,
			Reason:    "name does not form a valid metric identifier",
		}
	}

	cpu, err := ParsePercent(stat.CPUPercent)
	if err != nil {
		return nil, fieldError(stat.Container, FieldCPUPercent, stat.CPUPercent, err)
	}
	mem, err := ParsePercent(stat.MemPercent)
	if err != nil {
		return nil, fieldError(stat.Container, FieldMemPercent, stat.MemPercent, err)
	}
	in, out, err := ParseNetIO(stat.NetIO)
	if err != nil {
		return nil, fieldError(stat.Container, FieldNetIO, stat.NetIO, err)
	}

	return []Sample{
		{
			Name:  prefix + suffixCPU,
			Help:  fmt.Sprintf("CPU Usage for the '%s' container", stat.Container),
			Value: cpu,
		},
		{
			Name:  prefix + suffixMem,
			Help:  fmt.Sprintf("MEM Usage for the '%s' container", stat.Container),
			Value: mem,
		},
		{
			Name:  prefix + suffixNetInput,
			Help:  fmt.Sprintf("Network input in bytes for the '%s' container", stat.Container),
			Value: in,
		},
		{
			Name:  prefix + suffixNetOutput,
			Help:  fmt.Sprintf("Network output in bytes for the '%s' container", stat.Container),
			Value: out,
		},
	}, nil
}

// fieldError attaches the container and field to err. A ParseError coming
// from a parser keeps its own text and reason.
func fieldError(container, field, text string, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		e := *pe
		e.Container = container
		e.Field = field
		if e.Text == "" {
			e.Text = text
		}
		return &e
	}
	return &ParseError{Container: container, Field: field, Text: text, Err: err}
}
