package domain

// ProgressEvent is the single normalized progress payload. Percent is the
// combined batch-level value in [0,100]; BatchIndex, StepIndex and
// SubJobPercent let a UI reconstruct the hierarchy without the core
// depending on any particular progress API.
type ProgressEvent struct {
	Activity         string
	Status           string
	CurrentOperation string
	Percent          float64
	BatchIndex       int
	StepIndex        int
	SubJobPercent    int
	Completed        bool
}

// ProgressSink consumes progress events. The orchestrator is the sole
// producer; the caller's UI is the sole consumer.
type ProgressSink interface {
	Publish(ProgressEvent)
}

// ProgressFunc adapts a function to the ProgressSink interface.
type ProgressFunc func(ProgressEvent)

func (f ProgressFunc) Publish(e ProgressEvent) { f(e) }

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Publish(ProgressEvent) {}
