package metrics

// MultiSink fans out records to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDelivery forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordDelivery(ev DeliveryEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDelivery(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTracking forwards tracking samples when supported by the sink.
func (m *MultiSink) RecordTracking(sample TrackingSample) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TrackingRecorder); ok {
			if err := rec.RecordTracking(sample); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRating forwards rating events when supported by the sink.
func (m *MultiSink) RecordRating(ev RatingEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RatingRecorder); ok {
			if err := rec.RecordRating(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordConfirmLatency forwards latency metrics when supported by the sink.
func (m *MultiSink) RecordConfirmLatency(l ConfirmLatency) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(LatencyRecorder); ok {
			if err := rec.RecordConfirmLatency(l); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTransition forwards lifecycle transitions when supported by the sink.
func (m *MultiSink) RecordTransition(ev TransitionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TransitionRecorder); ok {
			if err := rec.RecordTransition(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
