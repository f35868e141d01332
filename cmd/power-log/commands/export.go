package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/powerpolicy/powermgr-go/pkg/log"
)

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

// exportRecord is the flat export form of an event. Enums are rendered by
// name.
type exportRecord struct {
	Timestamp string `json:"timestamp"`
	SessionID string `json:"session_id,omitempty"`
	Component string `json:"component"`
	Category  string `json:"category"`
	Type      string `json:"type"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Reason    string `json:"reason,omitempty"`
	LockID    uint64 `json:"lock_id,omitempty"`
	LockType  string `json:"lock_type,omitempty"`
	Name      string `json:"name,omitempty"`
	Pid       int32  `json:"pid,omitempty"`
	Uid       int32  `json:"uid,omitempty"`
	Message   string `json:"message,omitempty"`
}

func newExportRecord(event log.Event) exportRecord {
	r := exportRecord{
		Timestamp: event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
		SessionID: event.SessionID,
		Component: event.Component.String(),
		Category:  event.Category.String(),
		Type:      "unknown",
	}
	switch {
	case event.StateChange != nil:
		r.Type = "state"
		r.From = event.StateChange.OldState.String()
		r.To = event.StateChange.NewState.String()
		r.Reason = event.StateChange.Reason.String()
	case event.Desync != nil:
		r.Type = "desync"
		r.From = event.Desync.Believed.String()
		r.To = event.Desync.Corrected.String()
		r.Message = event.Desync.Message
	case event.TransitFailure != nil:
		r.Type = "transit"
		r.From = event.TransitFailure.From.String()
		r.To = event.TransitFailure.To.String()
		r.Reason = event.TransitFailure.Reason.String()
		r.Message = event.TransitFailure.Result.String()
	case event.Lock != nil:
		r.Type = "lock_" + event.Lock.Op.String()
		r.LockID = event.Lock.LockID
		r.LockType = event.Lock.Type.String()
		r.Name = event.Lock.Name
		r.Pid = event.Lock.Pid
		r.Uid = event.Lock.Uid
	case event.Error != nil:
		r.Type = "error"
		r.Message = event.Error.Message
	}
	return r
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(newExportRecord(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "component", "category", "type", "from", "to", "reason", "lock_id", "lock_type", "name", "pid", "uid", "message"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		r := newExportRecord(event)
		lockID := ""
		if r.LockID != 0 {
			lockID = strconv.FormatUint(r.LockID, 10)
		}
		pid, uid := "", ""
		if event.Lock != nil {
			pid = strconv.Itoa(int(r.Pid))
			uid = strconv.Itoa(int(r.Uid))
		}
		row := []string{
			r.Timestamp, r.SessionID, r.Component, r.Category, r.Type,
			r.From, r.To, r.Reason, lockID, r.LockType, r.Name, pid, uid, r.Message,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
