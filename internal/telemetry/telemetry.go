// Package telemetry records analysis-run events as a JSONL stream:
// catalog load, pre-pass completion, per-batch outcomes, and run
// completion. The stream makes runs auditable and diffable across
// catalog or profile changes.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event kinds identify the type of telemetry event.
const (
	KindRunStart      = "run_start"
	KindCatalogLoaded = "catalog_loaded"
	KindPrepassDone   = "prepass_done"
	KindBatchStart    = "batch_start"
	KindBatchDone     = "batch_done"
	KindBatchFailed   = "batch_failed"
	KindRunDone       = "run_done"
)

// Event is a single telemetry record: a timestamp, a kind tag, an
// optional batch name, and structured payload data.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	Batch     string    `json:"batch,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for
// concurrent use. A nil *Emitter is a valid no-op emitter, so telemetry
// can be disabled by simply not constructing one.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewEmitter creates an Emitter appending JSONL events to the file at
// path, creating it if needed.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes a single event. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Record is a convenience wrapper stamping the current time.
func (e *Emitter) Record(kind, batch string, data any) {
	_ = e.Emit(Event{Timestamp: time.Now().UTC(), Kind: kind, Batch: batch, Data: data})
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
