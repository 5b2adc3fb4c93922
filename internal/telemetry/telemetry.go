// Package telemetry provides engine observers: a JSON-lines writer for
// spectator feeds and offline logs, and an in-memory recorder.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/udisondev/robocombat/internal/engine"
)

// Record kinds.
const (
	KindRound = "round"
	KindGame  = "game"
)

// Record is one JSON line.
type Record struct {
	Match  string                `json:"match"`
	Kind   string                `json:"kind"`
	Game   int                   `json:"game"`
	Round  *engine.RoundSnapshot `json:"round,omitempty"`
	Result *engine.GameResult    `json:"result,omitempty"`
}

// Writer encodes telemetry of one or more matches as JSON lines. Matches may
// run concurrently; lines are never interleaved. The first write error is
// kept and every later record is dropped.
type Writer struct {
	mu  sync.Mutex
	enc *json.Encoder
	err error
}

// NewWriter returns a Writer encoding to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Match returns an observer that tags records with the match id.
func (w *Writer) Match(id string) engine.Observer {
	return &matchWriter{w: w, match: id}
}

// Err returns the first write error.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Writer) write(rec Record) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return
	}
	if err := w.enc.Encode(rec); err != nil {
		w.err = fmt.Errorf("writing telemetry for match %s: %w", rec.Match, err)
	}
}

type matchWriter struct {
	w     *Writer
	match string
}

func (m *matchWriter) ObserveRound(game int, snap engine.RoundSnapshot) {
	m.w.write(Record{Match: m.match, Kind: KindRound, Game: game, Round: &snap})
}

func (m *matchWriter) ObserveGame(res engine.GameResult) {
	// snapshots were already streamed round by round
	res.Snapshots = nil
	m.w.write(Record{Match: m.match, Kind: KindGame, Game: res.Game, Result: &res})
}

// Recorder keeps every record in memory.
type Recorder struct {
	mu      sync.Mutex
	rounds  map[int][]engine.RoundSnapshot
	results []engine.GameResult
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{rounds: make(map[int][]engine.RoundSnapshot)}
}

func (r *Recorder) ObserveRound(game int, snap engine.RoundSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds[game] = append(r.rounds[game], snap)
}

func (r *Recorder) ObserveGame(res engine.GameResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Rounds returns the snapshots recorded for game.
func (r *Recorder) Rounds(game int) []engine.RoundSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]engine.RoundSnapshot(nil), r.rounds[game]...)
}

// Results returns the recorded game results in order.
func (r *Recorder) Results() []engine.GameResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]engine.GameResult(nil), r.results...)
}

// Tee fans records out to several observers.
func Tee(observers ...engine.Observer) engine.Observer {
	return tee(observers)
}

type tee []engine.Observer

func (t tee) ObserveRound(game int, snap engine.RoundSnapshot) {
	for _, o := range t {
		o.ObserveRound(game, snap)
	}
}

func (t tee) ObserveGame(res engine.GameResult) {
	for _, o := range t {
		o.ObserveGame(res)
	}
}
