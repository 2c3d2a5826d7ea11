package usecase

import "mssql-backup/internal/domain"

// AggregatePercent folds two progress levels into one percent: the outer
// position in the batch and the inner position within the current database's
// step plan, refined by the running job's own percent.
//
//	(dbDone + (stepsDone + subJobPercent/100) / stepsTotal) / dbTotal * 100
//
// A database with no enabled steps counts as instantly complete instead of
// dividing by zero.
func AggregatePercent(dbTotal, dbDone, stepsTotal, stepsDone, subJobPercent int) float64 {
	if dbTotal <= 0 {
		return 100
	}
	inner := 1.0
	if stepsTotal > 0 {
		inner = (float64(stepsDone) + float64(subJobPercent)/100) / float64(stepsTotal)
	}
	p := (float64(dbDone) + inner) / float64(dbTotal) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// progressReporter wraps the caller's sink and enforces the batch-level
// emission contract: percents never go backwards, duplicates are dropped,
// and the completion signal at 100 fires exactly once.
type progressReporter struct {
	sink      domain.ProgressSink
	activity  string
	last      float64
	started   bool
	completed bool
}

func newProgressReporter(sink domain.ProgressSink, activity string) *progressReporter {
	if sink == nil {
		sink = domain.NopSink{}
	}
	return &progressReporter{sink: sink, activity: activity}
}

func (r *progressReporter) publish(e domain.ProgressEvent) {
	if r.completed {
		return
	}
	// 100 is reserved for the completion signal.
	if e.Percent >= 100 {
		return
	}
	if r.started && e.Percent <= r.last {
		return
	}
	r.started = true
	r.last = e.Percent
	e.Activity = r.activity
	r.sink.Publish(e)
}

func (r *progressReporter) complete(status string) {
	if r.completed {
		return
	}
	r.completed = true
	r.last = 100
	r.sink.Publish(domain.ProgressEvent{
		Activity:  r.activity,
		Status:    status,
		Percent:   100,
		Completed: true,
	})
}
