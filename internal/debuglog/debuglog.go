// Package debuglog persists every command sent to the engine, every
// byte received back from it, and any fatal error text captured along
// the way, so a session can be reconstructed after the fact. Records
// are CBOR-encoded and written one per event as a self-delimiting
// stream: a Reader can walk the file without a length prefix or
// framing of its own.
package debuglog

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Stream identifies which of the engine's output streams a
// BytesReceived record came from.
type Stream uint8

const (
	StreamUnknown Stream = iota
	StreamStdout
	StreamStderr
)

func (s Stream) String() string {
	switch s {
	case StreamStdout:
		return "stdout"
	case StreamStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Kind distinguishes the three record shapes this log carries.
type Kind uint8

const (
	KindCommandSent Kind = iota
	KindBytesReceived
	KindFatalError
)

// Record is one persisted event. Only the fields relevant to Kind are
// populated; the rest are left at their zero value.
type Record struct {
	Timestamp time.Time
	Kind      Kind
	Command   string // KindCommandSent
	Stream    Stream // KindBytesReceived
	Bytes     []byte // KindBytesReceived
	Message   string // KindFatalError
}

// Writer appends Records to an underlying stream as they happen.
// A Writer is safe for concurrent use: each record is encoded under a
// mutex, so records from different goroutines never interleave (the
// engine writes to one Writer from more than one goroutine).
type Writer struct {
	mu  sync.Mutex
	enc *cbor.Encoder
}

// NewWriter wraps w in a Writer using the pack's canonical CBOR
// encoding, the same deterministic mode core/planfmt uses for hashing
// — not load-bearing here (this log is never hashed), but there is no
// reason to diverge from the one encoding mode the module already
// configures elsewhere.
func NewWriter(w io.Writer) (*Writer, error) {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("debuglog: building CBOR encoder: %w", err)
	}
	return &Writer{enc: mode.NewEncoder(w)}, nil
}

// CommandSent records a line written to the engine's stdin.
func (w *Writer) CommandSent(command string) error {
	return w.write(Record{Timestamp: time.Now(), Kind: KindCommandSent, Command: command})
}

// BytesReceived records a chunk read from one of the engine's output
// streams, before it is handed to the matcher/protocol layer.
func (w *Writer) BytesReceived(stream Stream, data []byte) error {
	cp := append([]byte(nil), data...)
	return w.write(Record{Timestamp: time.Now(), Kind: KindBytesReceived, Stream: stream, Bytes: cp})
}

// FatalError records the text of a fatal condition (the engine package
// writes one when the engine process exits abnormally), so a post-mortem
// reader can see what ended the session and when, interleaved with the
// traffic that led up to it. Panic text captured by life.Guard is not
// written here.
func (w *Writer) FatalError(message string) error {
	return w.write(Record{Timestamp: time.Now(), Kind: KindFatalError, Message: message})
}

func (w *Writer) write(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("debuglog: encoding record: %w", err)
	}
	return nil
}

// Reader replays a debug log written by Writer, one Record at a time.
type Reader struct {
	dec *cbor.Decoder
}

// NewReader wraps r in a Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(r)}
}

// Next returns the next Record, or io.EOF once the stream is
// exhausted.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("debuglog: decoding record: %w", err)
	}
	return rec, nil
}

// ReadAll drains r to the end, returning every record in order.
func ReadAll(r io.Reader) ([]Record, error) {
	reader := NewReader(r)
	var records []Record
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}
