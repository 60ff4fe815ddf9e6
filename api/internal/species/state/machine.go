// Package state sequences a submission through Idle, Loading, Success and Failure.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"species-bot/api/internal/species/types"
)

// DefaultMinDisplay keeps the loading indicator up long enough to avoid flicker.
const DefaultMinDisplay = 2 * time.Second

type State int

const (
	Idle State = iota
	Loading
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = Idle
	case "loading":
		*s = Loading
	case "success":
		*s = Success
	case "failure":
		*s = Failure
	default:
		return fmt.Errorf("unknown state %q", b)
	}
	return nil
}

var (
	// ErrStale is returned when a completion arrives for a submission nobody is waiting on any more.
	ErrStale  = errors.New("submission superseded or abandoned")
	ErrClosed = errors.New("state machine closed")

	errNoResult = errors.New("pipeline returned no result")
)

// Snapshot is what subscribers see. Result and Image are set only in Success;
// Image may also be set in Failure when encoding worked.
type Snapshot struct {
	State      State
	Generation uint64
	Result     *types.Result
	Image      *types.UploadedImage
	Err        error
	Kind       types.Kind
}

// Runner is satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, f types.File) (*types.Result, *types.UploadedImage, error)
}

type RunnerFunc func(ctx context.Context, f types.File) (*types.Result, *types.UploadedImage, error)

func (fn RunnerFunc) Run(ctx context.Context, f types.File) (*types.Result, *types.UploadedImage, error) {
	return fn(ctx, f)
}

// Machine belongs to one consuming view (HTTP request, chat). Close it when the view goes away.
type Machine struct {
	runner     Runner
	minDisplay time.Duration

	// notify is held while subscribers run so Close can wait them out.
	notify sync.Mutex

	mu     sync.Mutex
	cur    Snapshot
	gen    uint64
	cancel context.CancelFunc
	closed bool
	subs   []func(Snapshot)
}

func New(r Runner, minDisplay time.Duration) *Machine {
	if minDisplay < 0 {
		minDisplay = 0
	}
	return &Machine{runner: r, minDisplay: minDisplay}
}

// Subscribe registers fn for every applied transition. fn runs on the submitting goroutine.
func (m *Machine) Subscribe(fn func(Snapshot)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

func (m *Machine) State() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// Close cancels the in-flight submission; its completion will be discarded. Once Close
// returns no subscriber runs again. Do not call it from a subscriber.
func (m *Machine) Close() {
	m.mu.Lock()
	m.closed = true
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.subs = nil
	m.mu.Unlock()

	m.notify.Lock()
	m.notify.Unlock()
}

// Reset drops a finished outcome, image included, and returns to Idle. It does nothing
// while a submission is loading and notifies no one.
func (m *Machine) Reset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur.State == Loading {
		return false
	}
	m.cur = Snapshot{State: Idle, Generation: m.gen}
	return true
}

// Submit moves to Loading and blocks until both the minimum display timer and the
// pipeline have finished. A newer Submit, Close, or cancellation of ctx makes this
// completion stale: the state is left alone and ErrStale is returned together with
// the outcome that was discarded.
func (m *Machine) Submit(ctx context.Context, f types.File) (Snapshot, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.gen++
	gen := m.gen
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()
	defer cancel()

	m.apply(gen, Snapshot{State: Loading, Generation: gen})

	var (
		res    *types.Result
		img    *types.UploadedImage
		runErr error
		g      errgroup.Group
	)
	g.Go(func() error {
		t := time.NewTimer(m.minDisplay)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	g.Go(func() error {
		res, img, runErr = m.runner.Run(ctx, f)
		return nil
	})
	_ = g.Wait()

	next := outcome(gen, res, img, runErr)
	if ctx.Err() != nil || !m.apply(gen, next) {
		slog.Debug("discarding stale completion", "generation", gen, "state", next.State)
		return next, ErrStale
	}
	return next, nil
}

func outcome(gen uint64, res *types.Result, img *types.UploadedImage, err error) Snapshot {
	s := Snapshot{Generation: gen, Image: img}
	switch {
	case err != nil:
		s.State, s.Err, s.Kind = Failure, err, types.KindOf(err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.Kind = types.KindCancelled
		}
	case res == nil:
		s.State, s.Err, s.Kind = Failure, &types.ParseError{Err: errNoResult}, types.KindParse
	default:
		s.State, s.Result = Success, res
	}
	return s
}

// apply stores s if gen is still the live generation and notifies subscribers.
func (m *Machine) apply(gen uint64, s Snapshot) bool {
	m.notify.Lock()
	defer m.notify.Unlock()

	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return false
	}
	m.cur = s
	if s.State != Loading {
		m.cancel = nil
	}
	subs := make([]func(Snapshot), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
	return true
}
