// Package commands implements the power-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/powerpolicy/powermgr-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Component *log.Component
	Category  *log.Category
}

func (f ViewFilter) matches(e log.Event) bool {
	if f.Component != nil && e.Component != *f.Component {
		return false
	}
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	return true
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session] COMPONENT CATEGORY
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [session:%s] %s %s\n", ts, shortenID(event.SessionID), event.Component, event.Category)

	switch {
	case event.StateChange != nil:
		sc := event.StateChange
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	case event.Desync != nil:
		ds := event.Desync
		fmt.Fprintf(w, "  Believed %s, display %s, corrected to %s\n", ds.Believed, ds.Display, ds.Corrected)
		if ds.Message != "" {
			fmt.Fprintf(w, "  Message: %s\n", ds.Message)
		}
	case event.TransitFailure != nil:
		tf := event.TransitFailure
		fmt.Fprintf(w, "  %s -> %s refused: %s\n", tf.From, tf.To, tf.Result)
		fmt.Fprintf(w, "  Reason: %s\n", tf.Reason)
		if tf.Message != "" {
			fmt.Fprintf(w, "  Message: %s\n", tf.Message)
		}
	case event.Lock != nil:
		formatLockDetails(w, event.Lock)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatLockDetails(w io.Writer, l *log.LockEvent) {
	fmt.Fprintf(w, "  %s %s", l.Op, l.Type)
	if l.Name != "" {
		fmt.Fprintf(w, " %q", l.Name)
	}
	fmt.Fprintf(w, " id=%d", l.LockID)
	if l.Pid != 0 || l.Uid != 0 {
		fmt.Fprintf(w, " pid=%d uid=%d", l.Pid, l.Uid)
	}
	fmt.Fprintln(w)
	if l.BundleName != "" {
		fmt.Fprintf(w, "  Bundle: %s\n", l.BundleName)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Component: %s\n", err.Component)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseComponentFlag parses a component string from a command-line flag
// (case-insensitive).
func ParseComponentFlag(s string) (log.Component, error) {
	return parseComponent(s)
}

func parseComponent(s string) (log.Component, error) {
	switch strings.ToLower(s) {
	case "statemachine", "state_machine", "sm":
		return log.ComponentStateMachine, nil
	case "runninglock", "running_lock", "lock":
		return log.ComponentRunningLock, nil
	case "service":
		return log.ComponentService, nil
	default:
		return 0, fmt.Errorf("invalid component: %s (must be statemachine, runninglock, or service)", s)
	}
}

// ParseCategoryFlag parses a category string from a command-line flag
// (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

func parseCategory(s string) (log.Category, error) {
	for _, c := range allCategories {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("invalid category: %s (must be state, desync, transit, lock, or error)", s)
}

var allCategories = []log.Category{
	log.CategoryState,
	log.CategoryDesync,
	log.CategoryTransit,
	log.CategoryLock,
	log.CategoryError,
}

var allComponents = []log.Component{
	log.ComponentStateMachine,
	log.ComponentRunningLock,
	log.ComponentService,
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if !filter.matches(event) {
			continue
		}
		formatEvent(output, event)
	}
	if reader.Truncated() {
		fmt.Fprintln(output, "(log ends with a truncated record)")
	}

	return nil
}
