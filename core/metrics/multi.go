package metrics

import "io"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSolve(ev SolveEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSetpoints forwards setpoints to sinks supporting them.
func (m *MultiSink) RecordSetpoints(evs []SetpointEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SetpointRecorder); ok {
			if err := rec.RecordSetpoints(evs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRejection forwards rejections to sinks supporting them.
func (m *MultiSink) RecordRejection(ev RejectionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RejectionRecorder); ok {
			if err := rec.RecordRejection(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink holding resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		CloseSink(s)
	}
}

// CloseSink releases the resources of s when it has any.
func CloseSink(s MetricsSink) {
	switch c := s.(type) {
	case interface{ Close() }:
		c.Close()
	case io.Closer:
		_ = c.Close()
	}
}
