package status

import (
	"testing"
	"time"

	"github.com/MrJorjinio/simpchat-client/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Booting {
		t.Errorf("initial state = %s, want BOOTING", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Booting, AuthRequired},
		{Booting, Connecting},
		{Booting, Error},
		{AuthRequired, Connecting},
		{Connecting, Connected},
		{Connected, Reconnecting},
		{Reconnecting, Connecting},
		{Reconnecting, Connected},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to); err != nil {
				t.Errorf("Transition(%s -> %s) error = %v", tt.from, tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("state = %s, want %s", m.Current(), tt.to)
			}
		})
	}
}

func TestInvalidTransition(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Transition(Connected); err == nil {
		t.Error("Transition(BOOTING -> CONNECTED) should fail")
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("session.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(AuthRequired); err != nil {
		t.Fatal(err)
	}

	select {
	case evt := <-ch:
		change, ok := evt.Payload.(StatusChange)
		if !ok {
			t.Fatalf("payload type %T, want StatusChange", evt.Payload)
		}
		if change.From != Booting || change.To != AuthRequired {
			t.Errorf("change = %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for status event")
	}
}

// walkTo drives the machine from Booting to the target state.
func walkTo(t *testing.T, m *Machine, target State) {
	t.Helper()
	if m.Current() == target {
		return
	}
	var path []State
	switch target {
	case AuthRequired:
		path = []State{AuthRequired}
	case Connecting:
		path = []State{Connecting}
	case Connected:
		path = []State{Connecting, Connected}
	case Reconnecting:
		path = []State{Connecting, Connected, Reconnecting}
	case Error:
		path = []State{Error}
	}
	for _, s := range path {
		if err := m.Transition(s); err != nil {
			t.Fatalf("walkTo(%s): %v", target, err)
		}
	}
}
