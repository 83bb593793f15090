// Package notify fans engine events out to registered observers over four
// independent streams. Observers are plain callbacks; a panicking observer
// is recovered and logged without affecting other observers or the caller.
package notify

import (
	"github.com/google/uuid"

	"github.com/helixtrade/causegraph/internal/logging"
	"github.com/helixtrade/causegraph/internal/models"
)

// Callback types, one per stream.
type (
	RootCauseFunc    func(result *models.RootCauseResult)
	CascadeFunc      func(reconstruction *models.CascadeReconstruction)
	SpikeFunc        func(alert models.SpikeAlert)
	UnclearCauseFunc func(cause models.UnclearCause)
)

// Unsubscribe removes the observer it was returned for. Safe to call more
// than once.
type Unsubscribe func()

// Bus is the engine's notification fan-out. Callbacks run synchronously on
// the publishing goroutine, in registration-independent map order. Not safe
// for concurrent use; the engine serializes access.
type Bus struct {
	rootCause    map[string]RootCauseFunc
	cascade      map[string]CascadeFunc
	spike        map[string]SpikeFunc
	unclearCause map[string]UnclearCauseFunc
	logger       *logging.Logger
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		rootCause:    map[string]RootCauseFunc{},
		cascade:      map[string]CascadeFunc{},
		spike:        map[string]SpikeFunc{},
		unclearCause: map[string]UnclearCauseFunc{},
		logger:       logging.GetLogger("notify"),
	}
}

// OnRootCauseFound registers an observer for completed analyses.
func (b *Bus) OnRootCauseFound(fn RootCauseFunc) Unsubscribe {
	token := uuid.New().String()
	b.rootCause[token] = fn
	return func() { delete(b.rootCause, token) }
}

// OnCascadeReconstructed registers an observer for cascade reconstructions.
func (b *Bus) OnCascadeReconstructed(fn CascadeFunc) Unsubscribe {
	token := uuid.New().String()
	b.cascade[token] = fn
	return func() { delete(b.cascade, token) }
}

// OnMajorCauseSpike registers an observer for abrupt metric movements.
func (b *Bus) OnMajorCauseSpike(fn SpikeFunc) Unsubscribe {
	token := uuid.New().String()
	b.spike[token] = fn
	return func() { delete(b.spike, token) }
}

// OnUnclearCause registers an observer for analyses that found nothing.
func (b *Bus) OnUnclearCause(fn UnclearCauseFunc) Unsubscribe {
	token := uuid.New().String()
	b.unclearCause[token] = fn
	return func() { delete(b.unclearCause, token) }
}

// PublishRootCause delivers a result to every root-cause observer.
func (b *Bus) PublishRootCause(result *models.RootCauseResult) {
	for token, fn := range b.rootCause {
		b.deliver("root-cause-found", token, func() { fn(result) })
	}
}

// PublishCascade delivers a reconstruction to every cascade observer.
func (b *Bus) PublishCascade(reconstruction *models.CascadeReconstruction) {
	for token, fn := range b.cascade {
		b.deliver("cascade-reconstructed", token, func() { fn(reconstruction) })
	}
}

// PublishSpike delivers a spike alert to every spike observer.
func (b *Bus) PublishSpike(alert models.SpikeAlert) {
	for token, fn := range b.spike {
		b.deliver("major-cause-spike", token, func() { fn(alert) })
	}
}

// PublishUnclearCause delivers an unclear-cause event to every observer.
func (b *Bus) PublishUnclearCause(cause models.UnclearCause) {
	for token, fn := range b.unclearCause {
		b.deliver("unclear-cause", token, func() { fn(cause) })
	}
}

// deliver invokes one observer, recovering panics so a broken observer
// cannot take down the engine or starve its peers.
func (b *Bus) deliver(stream, token string, invoke func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorWithFields("observer panicked",
				logging.Field("stream", stream),
				logging.Field("token", token),
				logging.Field("panic", r),
			)
		}
	}()
	invoke()
}
