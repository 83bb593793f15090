package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/helixtrade/causegraph/internal/models"
)

func TestBusDeliversToAllObservers(t *testing.T) {
	bus := NewBus()
	first, second := 0, 0
	bus.OnRootCauseFound(func(*models.RootCauseResult) { first++ })
	bus.OnRootCauseFound(func(*models.RootCauseResult) { second++ })

	bus.PublishRootCause(&models.RootCauseResult{ID: "rca-1"})

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	unsub := bus.OnMajorCauseSpike(func(models.SpikeAlert) { calls++ })

	bus.PublishSpike(models.SpikeAlert{NodeID: "n1"})
	unsub()
	bus.PublishSpike(models.SpikeAlert{NodeID: "n2"})

	assert.Equal(t, 1, calls)
}

func TestBusUnsubscribeTwiceIsSafe(t *testing.T) {
	bus := NewBus()
	unsub := bus.OnUnclearCause(func(models.UnclearCause) {})
	unsub()
	unsub()

	assert.NotPanics(t, func() {
		bus.PublishUnclearCause(models.UnclearCause{Reason: "no chains"})
	})
}

func TestBusUnsubscribeOnlyRemovesOwnObserver(t *testing.T) {
	bus := NewBus()
	kept := 0
	unsub := bus.OnCascadeReconstructed(func(*models.CascadeReconstruction) {})
	bus.OnCascadeReconstructed(func(*models.CascadeReconstruction) { kept++ })
	unsub()

	bus.PublishCascade(&models.CascadeReconstruction{ID: "cascade-1"})

	assert.Equal(t, 1, kept)
}

func TestBusRecoversObserverPanic(t *testing.T) {
	bus := NewBus()
	delivered := 0
	bus.OnRootCauseFound(func(*models.RootCauseResult) { panic("observer bug") })
	bus.OnRootCauseFound(func(*models.RootCauseResult) { delivered++ })

	assert.NotPanics(t, func() {
		bus.PublishRootCause(&models.RootCauseResult{ID: "rca-1"})
	})
	assert.Equal(t, 1, delivered)
}

func TestBusStreamsAreIndependent(t *testing.T) {
	bus := NewBus()
	spikes, unclear := 0, 0
	bus.OnMajorCauseSpike(func(models.SpikeAlert) { spikes++ })
	bus.OnUnclearCause(func(models.UnclearCause) { unclear++ })

	bus.PublishSpike(models.SpikeAlert{NodeID: "n1", Timestamp: time.Now()})

	assert.Equal(t, 1, spikes)
	assert.Equal(t, 0, unclear)
}
