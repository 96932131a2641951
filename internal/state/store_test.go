package state

import (
	"errors"
	"testing"
	"time"

	"devstack/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetAndGet(t *testing.T) {
	store := NewStore()

	_, ok := store.Get(service.TypeRuntime)
	assert.False(t, ok)

	changed := store.Set(Update{
		Service:          service.TypeRuntime,
		Name:             "Docker",
		Status:           service.Running("27.0.3"),
		InstalledVersion: "27.0.3",
		Operation:        "check",
	})
	assert.True(t, changed)

	snap, ok := store.Get(service.TypeRuntime)
	require.True(t, ok)
	assert.Equal(t, "Docker", snap.Name)
	assert.Equal(t, service.Running("27.0.3"), snap.Status)
	assert.Equal(t, "check", snap.Operation)
	assert.False(t, snap.UpdatedAt.IsZero())
	_, err := uuid.Parse(snap.CorrelationID)
	assert.NoError(t, err, "generated correlation IDs are UUIDs")
}

func TestStore_AllReturnsACopy(t *testing.T) {
	store := NewStore()
	assert.Empty(t, store.All())

	store.Set(Update{Service: service.TypeRuntime, Name: "Docker", Status: service.Running("27.0.3")})
	store.Set(Update{Service: service.TypeBackend, Name: "Supabase", Status: service.Stopped()})

	all := store.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Supabase", all[service.TypeBackend].Name)

	delete(all, service.TypeRuntime)
	_, ok := store.Get(service.TypeRuntime)
	assert.True(t, ok)
}

func TestStore_UnchangedStatusIsNotAChange(t *testing.T) {
	store := NewStore()
	store.Set(Update{Service: service.TypeBackend, Status: service.Stopped()})

	assert.False(t, store.Set(Update{Service: service.TypeBackend, Status: service.Stopped()}))
	assert.True(t, store.Set(Update{Service: service.TypeBackend, Status: service.Running("")}))
	assert.True(t, store.Set(Update{Service: service.TypeBackend, Status: service.Running(`{"x":1}`)}), "details count as a change")

	m := store.Metrics()
	assert.Equal(t, 1, m.Services)
	assert.Equal(t, int64(3), m.StateChanges)
}

func TestStore_KeepsInstalledVersionAndError(t *testing.T) {
	store := NewStore()
	store.Set(Update{Service: service.TypeBackend, Status: service.Stopped(), InstalledVersion: "2.20.5"})
	store.Set(Update{Service: service.TypeBackend, Status: service.StartFailed("port taken"), Err: errors.New("Failed to start Supabase: port taken"), CorrelationID: "corr-1"})

	snap, _ := store.Get(service.TypeBackend)
	assert.Equal(t, "2.20.5", snap.InstalledVersion)
	assert.Equal(t, "Failed to start Supabase: port taken", snap.Error)
	assert.Equal(t, "corr-1", snap.CorrelationID)
}

func TestStore_Subscriptions(t *testing.T) {
	store := NewStore()
	all := store.Subscribe("")
	backendOnly := store.Subscribe(service.TypeBackend)
	assert.NotEqual(t, all.ID, backendOnly.ID)
	assert.Equal(t, 2, store.Metrics().ActiveSubscriptions)

	store.Set(Update{Service: service.TypeRuntime, Status: service.Starting()})

	select {
	case ev := <-all.Events:
		assert.Equal(t, service.TypeRuntime, ev.Service)
		assert.Equal(t, service.Starting(), ev.New)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected event on the catch-all subscription")
	}
	select {
	case ev := <-backendOnly.Events:
		t.Fatalf("backend subscription received runtime event %+v", ev)
	default:
	}

	store.Set(Update{Service: service.TypeBackend, Status: service.Running("")})
	select {
	case ev := <-backendOnly.Events:
		assert.Equal(t, service.Running(""), ev.New)
		assert.Equal(t, service.TypeBackend, ev.Snapshot.Service)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected event on the backend subscription")
	}

	store.Unsubscribe(backendOnly)
	assert.True(t, backendOnly.IsClosed())
	assert.Equal(t, 1, store.Metrics().ActiveSubscriptions)
	_, open := <-backendOnly.Events
	assert.False(t, open)
}

func TestStore_SlowSubscriberDropsEvents(t *testing.T) {
	store := NewStore()
	sub := store.Subscribe(service.TypeRuntime)

	for i := 0; i < subscriptionBuffer+5; i++ {
		status := service.Stopped()
		if i%2 == 0 {
			status = service.Running("v")
		}
		store.Set(Update{Service: service.TypeRuntime, Status: status})
	}

	m := store.Metrics()
	assert.Equal(t, int64(subscriptionBuffer), m.EventsDelivered)
	assert.Equal(t, int64(5), m.DroppedEvents)
	assert.Len(t, sub.Events, subscriptionBuffer)
}

func TestStore_ClosedSubscriptionIsPruned(t *testing.T) {
	store := NewStore()
	sub := store.Subscribe("")
	sub.Close()
	sub.Close()

	store.Set(Update{Service: service.TypeRuntime, Status: service.Stopped()})
	assert.Equal(t, 0, store.Metrics().ActiveSubscriptions)
}
