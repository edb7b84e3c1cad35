package autoapply

import (
	"fmt"
	"log/slog"
)

// State is the lifecycle state of a Runner.
type State int32

const (
	StateIdle State = iota
	StateLaunching
	StateLoggingIn
	StateSessionCaptured
	StateSearching
	StateApplying
	StateClosed
)

var stateNames = [...]string{
	StateIdle:            "idle",
	StateLaunching:       "launching",
	StateLoggingIn:       "logging_in",
	StateSessionCaptured: "session_captured",
	StateSearching:       "searching",
	StateApplying:        "applying",
	StateClosed:          "closed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Summary counts what a run did.
type Summary struct {
	Searches     int // position/location iterations started
	SearchErrors int
	Found        int // postings returned by searches
	Blacklisted  int
	Skipped      int // already in the ledger, already seen, or already applied on the site
	Applied      int
	Failed       int
	Recorded     int // ledger rows appended
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("searches", s.Searches),
		slog.Int("search_errors", s.SearchErrors),
		slog.Int("found", s.Found),
		slog.Int("blacklisted", s.Blacklisted),
		slog.Int("skipped", s.Skipped),
		slog.Int("applied", s.Applied),
		slog.Int("failed", s.Failed),
		slog.Int("recorded", s.Recorded),
	)
}
