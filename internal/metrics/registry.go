package metrics

import (
	"fmt"
	"io"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// ContentType is the exposition format served to scrapers.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// Registry holds the gauges of a single scrape in registration order. It is
// not safe for concurrent use and is discarded after rendering.
type Registry struct {
	samples  []Sample
	names    map[string]struct{}
	poisoned bool
}

func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register adds s. A duplicate or malformed name fails and leaves the
// registry unusable.
func (r *Registry) Register(s Sample) error {
	if r.poisoned {
		return ErrRegistryPoisoned
	}
	if !ValidName(s.Name) {
		r.poisoned = true
		return &ParseError{Field: "metric_name", Text: s.Name, Reason: "not a valid metric identifier"}
	}
	if _, ok := r.names[s.Name]; ok {
		r.poisoned = true
		return &DuplicateNameError{Name: s.Name}
	}
	r.names[s.Name] = struct{}{}
	r.samples = append(r.samples, s)
	return nil
}

// RegisterAll registers samples in order, stopping at the first failure.
func (r *Registry) RegisterAll(samples []Sample) error {
	for _, s := range samples {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Len() int { return len(r.samples) }

// WriteTo writes one HELP/TYPE/value triple per sample.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	if r.poisoned {
		return 0, ErrRegistryPoisoned
	}
	var total int64
	for _, s := range r.samples {
		n, err := expfmt.MetricFamilyToText(w, gaugeFamily(s))
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("write %s: %w", s.Name, err)
		}
	}
	return total, nil
}

// Render returns the exposition text. Rendering does not modify the
// registry, so repeated calls give identical output. Values use the shortest
// %g form, so 3400000 bytes is written as 3.4e+06.
func (r *Registry) Render() (string, error) {
	var b strings.Builder
	if _, err := r.WriteTo(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func gaugeFamily(s Sample) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(s.Name),
		Help: proto.String(s.Help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{
			{Gauge: &dto.Gauge{Value: proto.Float64(s.Value)}},
		},
	}
}
