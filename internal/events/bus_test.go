package events

import (
	"testing"

	"github.com/hyperjump/erabu/internal/models"
)

func TestBus_publishSubscribe(t *testing.T) {
	bus := NewBus()
	var got []Event
	bus.Subscribe(KindFilesUpdated, func(e Event) { got = append(got, e) })

	bus.Publish(FilesUpdated{Action: ActionApprove, IDs: []string{"a"}, Count: 1})
	bus.Publish(FilesDiscovered{Files: []models.File{{ID: "a"}}}) // different kind, not delivered

	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	upd, ok := got[0].(FilesUpdated)
	if !ok || upd.Action != ActionApprove || upd.Count != 1 {
		t.Errorf("unexpected event: %+v", got[0])
	}
}

func TestBus_synchronousDispatch(t *testing.T) {
	bus := NewBus()
	done := false
	bus.Subscribe(KindFilterChanged, func(Event) { done = true })
	bus.Publish(FilterChanged{})
	if !done {
		t.Error("Publish should invoke subscribers before returning")
	}
}

func TestBus_registrationOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	bus.Subscribe(KindSortChanged, func(Event) { order = append(order, 1) })
	bus.Subscribe(KindSortChanged, func(Event) { order = append(order, 2) })
	bus.Subscribe(KindSortChanged, func(Event) { order = append(order, 3) })
	bus.Publish(SortChanged{Field: "name"})
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("dispatch order = %v, want [1 2 3]", order)
	}
}

func TestBus_unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	cancel := bus.Subscribe(KindStateChanged, func(Event) { calls++ })
	bus.Publish(StateChanged{Path: "files"})
	cancel()
	bus.Publish(StateChanged{Path: "files"})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
