// internal/watcher/watcher.go
package watcher

import (
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tamzrod/netclass/internal/netclass"
)

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 16

// State is the activation state of the shared OS source.
type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Subscription is one listener. It owns no OS resources.
type Subscription struct {
	ID uuid.UUID

	w  *Watcher
	ch chan netclass.Class

	// guarded by Watcher.mu
	last      netclass.Class
	delivered bool
}

// C returns the class stream. It is closed on unsubscribe.
func (s *Subscription) C() <-chan netclass.Class { return s.ch }

// Close is shorthand for Watcher.Unsubscribe(s).
func (s *Subscription) Close() error { return s.w.Unsubscribe(s) }

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// WithDedup suppresses delivering a class equal to the last class
// delivered to the same listener. Off by default: every OS change
// event is delivered.
func WithDedup(on bool) Option {
	return func(w *Watcher) { w.dedup = on }
}

// WithBuffer sets the per-subscription channel capacity.
func WithBuffer(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.buffer = n
		}
	}
}

// Watcher bridges OS connectivity changes into classified notifications.
// One OS source is shared by all listeners and reference-counted by them.
//
// Lock order: life, then mu. The source callback takes mu only, so
// Stop may wait for an in-flight callback while life is held.
type Watcher struct {
	factory Factory
	log     *zap.Logger
	dedup   bool
	buffer  int

	// life serializes activation and deactivation.
	life sync.Mutex

	mu    sync.Mutex
	src   Source
	subs  map[uuid.UUID]*Subscription
	state State
	gen   uint64
}

// New creates an inactive watcher. The source is created lazily.
func New(factory Factory, opts ...Option) *Watcher {
	w := &Watcher{
		factory: factory,
		log:     zap.NewNop(),
		buffer:  DefaultBuffer,
		subs:    make(map[uuid.UUID]*Subscription),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Status reads and classifies the current connectivity.
// It never fails: any OS failure yields Unreachable.
func (w *Watcher) Status() netclass.Class {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.query()
}

// Subscribe registers a listener, activating the OS source if it is the
// first one. Activation failure returns *ActivationError.
func (w *Watcher) Subscribe() (*Subscription, error) {
	w.life.Lock()
	defer w.life.Unlock()

	w.mu.Lock()
	if w.state == Inactive {
		src, err := w.ensureInitialized()
		// Consumed even if Start fails, so a half-started source can
		// never reach a later activation.
		w.gen++
		gen := w.gen
		w.mu.Unlock()

		if err != nil {
			w.log.Warn("watcher: source unavailable", zap.Error(err))
			return nil, &ActivationError{Err: err}
		}
		if err := src.Start(w.onChange(gen)); err != nil {
			w.log.Warn("watcher: activation failed", zap.Error(err))
			return nil, &ActivationError{Err: err}
		}

		w.mu.Lock()
		w.state = Active
		w.log.Info("watcher: source activated")
	}
	defer w.mu.Unlock()

	s := &Subscription{
		ID: uuid.New(),
		w:  w,
		ch: make(chan netclass.Class, w.buffer),
	}
	w.subs[s.ID] = s

	w.log.Debug("watcher: subscribed",
		zap.String("id", s.ID.String()),
		zap.Int("listeners", len(w.subs)),
	)
	return s, nil
}

// Unsubscribe removes a listener and closes its channel. Removing the
// last listener deactivates the OS source; the watcher is Inactive
// afterwards even if Stop fails, in which case *DeactivationError is
// returned. Unknown or already removed subscriptions are a no-op.
func (w *Watcher) Unsubscribe(s *Subscription) error {
	if s == nil {
		return nil
	}

	w.life.Lock()
	defer w.life.Unlock()

	w.mu.Lock()
	if _, ok := w.subs[s.ID]; !ok {
		w.mu.Unlock()
		return nil
	}
	delete(w.subs, s.ID)
	close(s.ch)

	w.log.Debug("watcher: unsubscribed",
		zap.String("id", s.ID.String()),
		zap.Int("listeners", len(w.subs)),
	)

	if len(w.subs) > 0 || w.state != Active {
		w.mu.Unlock()
		return nil
	}
	w.state = Inactive
	src := w.src
	w.mu.Unlock()

	if err := src.Stop(); err != nil {
		w.log.Warn("watcher: deactivation failed", zap.Error(err))
		return &DeactivationError{Err: err}
	}
	w.log.Info("watcher: source deactivated")
	return nil
}

// State reports whether the OS source is currently active.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Len returns the number of active listeners.
func (w *Watcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

// Close drops every listener, deactivates the source and releases it.
// The watcher may be reused afterwards; the source is recreated lazily.
func (w *Watcher) Close() error {
	w.life.Lock()
	defer w.life.Unlock()

	w.mu.Lock()
	for id, s := range w.subs {
		delete(w.subs, id)
		close(s.ch)
	}
	wasActive := w.state == Active
	w.state = Inactive
	src := w.src
	w.src = nil
	w.mu.Unlock()

	if src == nil {
		return nil
	}

	var errs []error
	if wasActive {
		if err := src.Stop(); err != nil {
			errs = append(errs, &DeactivationError{Err: err})
		}
	}
	if c, ok := src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ---- internal (caller holds mu) ----

// ensureInitialized creates the OS source on first use.
func (w *Watcher) ensureInitialized() (Source, error) {
	if w.src != nil {
		return w.src, nil
	}
	if w.factory == nil {
		return nil, errors.New("watcher: no source factory")
	}
	src, err := w.factory()
	if err != nil {
		return nil, err
	}
	w.src = src
	return src, nil
}

func (w *Watcher) query() netclass.Class {
	src, err := w.ensureInitialized()
	if err != nil {
		w.log.Warn("watcher: source unavailable", zap.Error(err))
		return netclass.Unreachable
	}
	r, err := src.Reading()
	if err != nil {
		w.log.Debug("watcher: reading failed", zap.Error(err))
		return netclass.Unreachable
	}
	return netclass.Classify(r)
}

func (w *Watcher) onChange(gen uint64) func() {
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()

		if w.state != Active || w.gen != gen {
			return
		}

		class := w.query()
		for _, s := range w.subs {
			w.deliver(s, class)
		}
	}
}

// deliver never blocks. A full buffer loses its oldest entry so the
// newest class always reaches the listener.
func (w *Watcher) deliver(s *Subscription, class netclass.Class) {
	if w.dedup && s.delivered && s.last == class {
		return
	}

	select {
	case s.ch <- class:
	default:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- class:
		default:
			w.log.Warn("watcher: listener overflow", zap.String("id", s.ID.String()))
			return
		}
	}
	s.last = class
	s.delivered = true
}
