// Package mpv provides a client for mpv's JSON IPC over a Unix socket
// (NDJSON) and an adapter that lets a running mpv drive the annotation
// engine.
package mpv

import (
	"encoding/json"
	"fmt"
)

// Command is one request line sent to mpv.
type Command struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id,omitempty"`
}

// Response is one line read from mpv: either a reply to a command or an
// asynchronous event.
type Response struct {
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	RequestID int64           `json:"request_id,omitempty"`
	Event     string          `json:"event,omitempty"`
	Name      string          `json:"name,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}

// OK reports whether mpv accepted the command.
func (r Response) OK() bool { return r.Error == "success" }

// IsEvent reports whether the line is an event rather than a reply.
func (r Response) IsEvent() bool { return r.Event != "" }

// Float decodes the reply data as a number.
func (r Response) Float() (float64, error) {
	var f float64
	if err := json.Unmarshal(r.Data, &f); err != nil {
		return 0, fmt.Errorf("decode float: %w", err)
	}
	return f, nil
}

// Bool decodes the reply data as a flag.
func (r Response) Bool() (bool, error) {
	var b bool
	if err := json.Unmarshal(r.Data, &b); err != nil {
		return false, fmt.Errorf("decode bool: %w", err)
	}
	return b, nil
}

// Property names read by the player adapter.
const (
	PropTimePos  = "time-pos"
	PropDuration = "duration"
	PropPause    = "pause"
	PropSpeed    = "speed"
)

// Event names mpv emits that the adapter cares about.
const (
	EventFileLoaded = "file-loaded"
	EventEndFile    = "end-file"
	EventSeek       = "seek"
)
