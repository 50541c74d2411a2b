package driver

import "time"

// Stage is the step a descriptor is in.
type Stage string

const (
	StageParse Stage = "parse"
	StageCheck Stage = "check"
)

// Status is the state of one descriptor in a CheckAll run.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	// StatusError means the descriptor produced error diagnostics.
	StatusError Status = "error"
)

// Event reports progress for the descriptor at Index of the spans passed to
// CheckAll.
type Event struct {
	Index   int
	Stage   Stage
	Status  Status
	Elapsed time.Duration
}

// ProgressSink consumes progress events. CheckAll calls it from its workers
// concurrently.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
