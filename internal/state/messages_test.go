package state

import (
	"context"
	"testing"

	"github.com/MrJorjinio/simpchat-client/internal/api"
	"github.com/MrJorjinio/simpchat-client/internal/model"
)

func newMessageStore(t *testing.T) (*MessageStore, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	return NewMessageStore(ft, nil), ft
}

func TestInsertIdempotent(t *testing.T) {
	s, _ := newMessageStore(t)
	m := msg("m1", "c1", "hi")

	if !s.Insert(m) {
		t.Error("first Insert() = false, want true")
	}
	if s.Insert(m) {
		t.Error("second Insert() = true, want false")
	}
	if got := len(s.Messages()); got != 1 {
		t.Errorf("len = %d, want 1", got)
	}
}

func TestInsertPreservesArrivalOrder(t *testing.T) {
	s, _ := newMessageStore(t)
	// Arrival order wins even when timestamps disagree.
	a := model.Message{ID: "m1", ChatID: "c1", SentAt: 2000}
	b := model.Message{ID: "m2", ChatID: "c1", SentAt: 1000}
	s.Insert(a)
	s.Insert(b)

	got := s.Messages()
	if got[0].ID != "m1" || got[1].ID != "m2" {
		t.Errorf("order = %s,%s, want m1,m2", got[0].ID, got[1].ID)
	}
}

func TestEditInPlaceOnlyContent(t *testing.T) {
	s, _ := newMessageStore(t)
	m := msg("m1", "c1", "old")
	m.Pinned = true
	m.Reactions = []model.Reaction{{UserID: "u1", Kind: "like"}}
	s.Insert(m)

	s.EditInPlace("m1", "new")

	got, _ := s.Get("m1")
	if got.Content != "new" {
		t.Errorf("content = %q, want new", got.Content)
	}
	if !got.Pinned || len(got.Reactions) != 1 {
		t.Error("edit touched pin state or reactions")
	}
}

func TestEditAbsentIDIgnored(t *testing.T) {
	s, _ := newMessageStore(t)
	s.EditInPlace("ghost", "x") // must not panic or create entries
	if got := len(s.Messages()); got != 0 {
		t.Errorf("len = %d, want 0", got)
	}
}

func TestRemoveByID(t *testing.T) {
	s, _ := newMessageStore(t)
	s.Insert(msg("m1", "c1", "a"))
	s.Insert(msg("m2", "c1", "b"))

	s.RemoveByID("m1")

	got := s.Messages()
	if len(got) != 1 || got[0].ID != "m2" {
		t.Errorf("messages = %+v", got)
	}
}

func TestAddReactionSetSemantics(t *testing.T) {
	s, _ := newMessageStore(t)
	s.Insert(msg("m1", "c1", "a"))

	s.AddReaction("m1", "u1", "like")
	// Re-delivered event: must be a no-op.
	s.AddReaction("m1", "u1", "like")
	s.AddReaction("m1", "u1", "heart")

	got, _ := s.Get("m1")
	if len(got.Reactions) != 2 {
		t.Errorf("reactions = %+v, want 2 distinct entries", got.Reactions)
	}
}

func TestRemoveReactionByValue(t *testing.T) {
	s, _ := newMessageStore(t)
	s.Insert(msg("m1", "c1", "a"))
	s.AddReaction("m1", "u1", "like")
	s.AddReaction("m1", "u2", "like")

	s.RemoveReaction("m1", "u1", "like")

	got, _ := s.Get("m1")
	if len(got.Reactions) != 1 || got.Reactions[0].UserID != "u2" {
		t.Errorf("reactions = %+v", got.Reactions)
	}
}

func TestPinAndSideList(t *testing.T) {
	s, _ := newMessageStore(t)
	s.Reset("c1", []model.Message{msg("m1", "c1", "a"), msg("m2", "c1", "b")})

	s.MarkPinned("m1", "admin", 12345)

	got, _ := s.Get("m1")
	if !got.Pinned || got.PinnedBy != "admin" || got.PinnedAt != 12345 {
		t.Errorf("pin fields = %+v", got)
	}
	pins := s.PinnedMessages("c1")
	if len(pins) != 1 || pins[0].ID != "m1" {
		t.Errorf("pinned side list = %+v", pins)
	}

	// Duplicate pin event must not duplicate the side-list entry.
	s.MarkPinned("m1", "admin", 12345)
	if got := len(s.PinnedMessages("c1")); got != 1 {
		t.Errorf("side list len = %d after duplicate pin", got)
	}

	s.MarkUnpinned("m1")
	got, _ = s.Get("m1")
	if got.Pinned || got.PinnedBy != "" || got.PinnedAt != 0 {
		t.Errorf("pin fields not cleared: %+v", got)
	}
	if got := len(s.PinnedMessages("c1")); got != 0 {
		t.Errorf("side list len = %d after unpin", got)
	}
}

func TestMarkSeenBatchIgnoresAbsent(t *testing.T) {
	s, _ := newMessageStore(t)
	s.Reset("c1", []model.Message{msg("m1", "c1", "a")})

	s.MarkSeenBatch([]string{"m1", "scrolled-out"}, 999)

	got, _ := s.Get("m1")
	if !got.Seen || got.SeenAt != 999 {
		t.Errorf("m1 = %+v", got)
	}
}

func TestLoadReplacesAndRebuildsPins(t *testing.T) {
	s, ft := newMessageStore(t)
	pinned := msg("m2", "c1", "b")
	pinned.Pinned = true
	ft.chatByID["c1"] = &api.ChatWithMessages{
		Chat:     model.ChatSummary{ID: "c1"},
		Messages: []model.Message{msg("m1", "c1", "a"), pinned},
	}

	s.Insert(msg("stale", "c1", "old"))
	s.Load(context.Background(), "c1")

	if got := len(s.Messages()); got != 2 {
		t.Errorf("len = %d, want 2 (full replace)", got)
	}
	if pins := s.PinnedMessages("c1"); len(pins) != 1 || pins[0].ID != "m2" {
		t.Errorf("pins = %+v", pins)
	}
	if s.Err() != "" {
		t.Errorf("err = %q", s.Err())
	}
}

func TestLoadFailureKeepsList(t *testing.T) {
	s, ft := newMessageStore(t)
	s.Reset("c1", []model.Message{msg("m1", "c1", "a")})
	ft.fetchErr = &api.Error{Status: 500}

	s.Load(context.Background(), "c1")

	if got := len(s.Messages()); got != 1 {
		t.Errorf("len = %d, want 1 (previous list kept)", got)
	}
	if s.Err() == "" {
		t.Error("Err() empty after failed load")
	}
}

func TestReplaceIDKeepsPosition(t *testing.T) {
	s, _ := newMessageStore(t)
	s.Insert(msg("a", "c1", "first"))
	s.Insert(msg("tmp-id", "c1", "optimistic"))
	s.Insert(msg("b", "c1", "last"))

	confirmed := msg("srv-1", "c1", "optimistic")
	s.ReplaceID("tmp-id", confirmed)

	got := s.Messages()
	if got[1].ID != "srv-1" {
		t.Errorf("position 1 id = %q, want srv-1", got[1].ID)
	}
}
