package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("session.", 10)
	defer unsub()

	b.Publish(Event{Kind: "session.status_changed", At: time.Now(), Payload: "test"})

	select {
	case evt := <-ch:
		if evt.Kind != "session.status_changed" {
			t.Errorf("got kind %q, want session.status_changed", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("rt.", 10)
	defer unsub()

	b.Publish(Event{Kind: "session.status_changed"})
	b.Publish(Event{Kind: "rt.message"})

	select {
	case evt := <-ch:
		if evt.Kind != "rt.message" {
			t.Errorf("got kind %q, want rt.message", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// Ensure session event was not delivered.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected: no more events.
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("session.", 10)
	unsub()

	b.Publish(Event{Kind: "session.status_changed"})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected.
	}
}

func TestLossyDropsOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.SubscribeLossy("test.", 1)
	defer unsub()

	// Fill buffer.
	b.Publish(Event{Kind: "test.one"})
	// This should be dropped (non-blocking).
	b.Publish(Event{Kind: "test.two"})

	evt := <-ch
	if evt.Kind != "test.one" {
		t.Errorf("got %q, want test.one", evt.Kind)
	}
}

func TestLosslessBlocksUntilDrained(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("test.", 1)
	defer unsub()

	b.Publish(Event{Kind: "test.one"})

	done := make(chan struct{})
	go func() {
		b.Publish(Event{Kind: "test.two"})
		close(done)
	}()

	// Second publish must wait for the buffer to drain.
	select {
	case <-done:
		t.Fatal("publish returned before subscriber drained")
	case <-time.After(50 * time.Millisecond):
	}

	if evt := <-ch; evt.Kind != "test.one" {
		t.Errorf("got %q, want test.one", evt.Kind)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish never completed")
	}
	if evt := <-ch; evt.Kind != "test.two" {
		t.Errorf("got %q, want test.two", evt.Kind)
	}
}

func TestUnsubscribeReleasesBlockedPublisher(t *testing.T) {
	b := New()
	_, unsub := b.Subscribe("test.", 1)

	// Fill the buffer so the next lossless publish parks.
	b.Publish(Event{Kind: "test.one"})

	published := make(chan struct{})
	go func() {
		b.Publish(Event{Kind: "test.two"})
		close(published)
	}()

	select {
	case <-published:
		t.Fatal("publish returned before subscriber drained or unsubscribed")
	case <-time.After(50 * time.Millisecond):
	}

	// Unsubscribing with a full buffer must unblock the parked publisher.
	unsub()

	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("publish still blocked after unsubscribe")
	}
}

func TestEmitStampsTime(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("state.", 1)
	defer unsub()

	before := time.Now()
	b.Emit("state.chats_changed", nil)

	evt := <-ch
	if evt.At.Before(before) {
		t.Errorf("event time %v predates Emit call", evt.At)
	}
}
