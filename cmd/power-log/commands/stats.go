package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/powerpolicy/powermgr-go/pkg/log"
	"github.com/powerpolicy/powermgr-go/pkg/model"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByComponent map[log.Component]int
	EventsByCategory  map[log.Category]int
	Transitions       map[model.PowerState]int
	TransitFailures   int
	Desyncs           int
	LockOps           map[log.LockOp]int
	Sessions          map[string]*SessionStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single daemon run.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	LastState model.PowerState
	HasState  bool
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByComponent: make(map[log.Component]int),
		EventsByCategory:  make(map[log.Category]int),
		Transitions:       make(map[model.PowerState]int),
		LockOps:           make(map[log.LockOp]int),
		Sessions:          make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	if reader.Truncated() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Warning: log ends with a truncated record")
	}
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByComponent[event.Component]++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	sess, ok := s.Sessions[event.SessionID]
	if !ok {
		sess = &SessionStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Sessions[event.SessionID] = sess
	}
	sess.Events++
	if event.Timestamp.After(sess.LastSeen) {
		sess.LastSeen = event.Timestamp
	}

	switch {
	case event.StateChange != nil:
		s.Transitions[event.StateChange.NewState]++
		sess.LastState = event.StateChange.NewState
		sess.HasState = true
	case event.Desync != nil:
		s.Desyncs++
	case event.TransitFailure != nil:
		s.TransitFailures++
	case event.Lock != nil:
		s.LockOps[event.Lock.Op]++
	case event.Error != nil:
		s.Errors++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Power Event Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Component:")
	for _, c := range allComponents {
		if count := stats.EventsByComponent[c]; count > 0 {
			fmt.Fprintf(w, "  %-16s %d\n", c.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, c := range allCategories {
		if count := stats.EventsByCategory[c]; count > 0 {
			fmt.Fprintf(w, "  %-16s %d\n", c.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.Transitions) > 0 {
		fmt.Fprintln(w, "Transitions into:")
		states := make([]model.PowerState, 0, len(stats.Transitions))
		for st := range stats.Transitions {
			states = append(states, st)
		}
		sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
		for _, st := range states {
			fmt.Fprintf(w, "  %-16s %d\n", st.String()+":", stats.Transitions[st])
		}
		fmt.Fprintln(w)
	}

	if len(stats.LockOps) > 0 {
		fmt.Fprintln(w, "Lock Operations:")
		for op := log.LockOpAdd; op <= log.LockOpTimeout; op++ {
			if count := stats.LockOps[op]; count > 0 {
				fmt.Fprintf(w, "  %-16s %d\n", op.String()+":", count)
			}
		}
		fmt.Fprintln(w)
	}

	if stats.TransitFailures > 0 {
		fmt.Fprintf(w, "Refused Transitions: %d\n", stats.TransitFailures)
	}
	if stats.Desyncs > 0 {
		fmt.Fprintf(w, "Desyncs: %d\n", stats.Desyncs)
	}

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenID(s.id), s.stats.Events, duration)
			if s.stats.HasState {
				fmt.Fprintf(w, "           Last state: %s\n", s.stats.LastState)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
