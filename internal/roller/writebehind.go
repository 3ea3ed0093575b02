package roller

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/riseroll/internal/models"
)

type historyEntry struct {
	activity string
	at       time.Time
}

type saveFunc func(ctx context.Context, s models.SelectionState) error
type appendFunc func(ctx context.Context, activity string, at time.Time) error

// writeBehind persists state changes on a background goroutine. Only the
// latest state is kept while a write is in flight; history entries are
// queued and written in order.
type writeBehind struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending *models.SelectionState
	history []historyEntry
	busy    bool
	closed  bool
	done    chan struct{}

	save          saveFunc
	appendHistory appendFunc
}

func newWriteBehind(save saveFunc, appendHistory appendFunc) *writeBehind {
	w := &writeBehind{
		done:          make(chan struct{}),
		save:          save,
		appendHistory: appendHistory,
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

func (w *writeBehind) enqueue(s *models.SelectionState, h *historyEntry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		log.Warn("Dropping write after shutdown")
		return
	}
	if h != nil {
		w.history = append(w.history, *h)
	}
	if s != nil {
		c := s.Clone()
		w.pending = &c
	}
	w.cond.Broadcast()
}

func (w *writeBehind) idle() bool {
	return !w.busy && w.pending == nil && len(w.history) == 0
}

func (w *writeBehind) run() {
	defer close(w.done)

	w.mu.Lock()
	for {
		for !w.closed && w.pending == nil && len(w.history) == 0 {
			w.cond.Wait()
		}
		if w.pending == nil && len(w.history) == 0 {
			w.mu.Unlock()
			return
		}

		state, history := w.pending, w.history
		w.pending, w.history = nil, nil
		w.busy = true
		w.mu.Unlock()

		w.write(state, history)

		w.mu.Lock()
		w.busy = false
		w.cond.Broadcast()
	}
}

func (w *writeBehind) write(state *models.SelectionState, history []historyEntry) {
	ctx := context.Background()
	for _, h := range history {
		if err := w.appendHistory(ctx, h.activity, h.at); err != nil {
			log.Error("Failed to append history", "activity", h.activity, "error", err)
		}
	}
	if state != nil {
		if err := w.save(ctx, *state); err != nil {
			log.Error("Failed to save selection state", "error", err)
		}
	}
}

// flush waits until every queued write has been attempted. The waiting
// goroutine exits when ctx ends even if a write never returns.
func (w *writeBehind) flush(ctx context.Context) error {
	drained := make(chan struct{})
	var abandoned bool
	stop := context.AfterFunc(ctx, func() {
		w.mu.Lock()
		abandoned = true
		w.cond.Broadcast()
		w.mu.Unlock()
	})
	defer stop()

	go func() {
		defer close(drained)
		w.mu.Lock()
		defer w.mu.Unlock()
		for !w.idle() && !abandoned {
			w.cond.Wait()
		}
	}()

	<-drained

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.idle() {
		return nil
	}
	return ctx.Err()
}

// close drains the queue and stops the worker.
func (w *writeBehind) close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
