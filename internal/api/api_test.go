package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchChats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chats" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`[{"id":"c1","name":"General","kind":"group"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	chats, err := c.FetchChats(context.Background())
	if err != nil {
		t.Fatalf("FetchChats() error = %v", err)
	}
	if len(chats) != 1 || chats[0].ID != "c1" {
		t.Errorf("chats = %+v", chats)
	}
}

func TestSendMessageJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Content != "hello" || req.ChatID != "c1" {
			t.Errorf("req = %+v", req)
		}
		_, _ = w.Write([]byte(`{"message":{"id":"m1","chatId":"c1","content":"hello"},"chatId":"c1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	resp, err := c.SendMessage(context.Background(), SendMessageRequest{ChatID: "c1", Content: "hello"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if resp.Message.ID != "m1" {
		t.Errorf("message id = %q", resp.Message.ID)
	}
}

func TestSendMessageMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/form-data") {
			t.Errorf("Content-Type = %q, want multipart", ct)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		if r.FormValue("message") == "" {
			t.Error("missing message field")
		}
		f, hdr, err := r.FormFile("attachment")
		if err != nil {
			t.Fatal(err)
		}
		_ = f.Close()
		if hdr.Filename != "notes.txt" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		_, _ = w.Write([]byte(`{"message":{"id":"m2","chatId":"c1"},"chatId":"c1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	resp, err := c.SendMessage(context.Background(), SendMessageRequest{
		ChatID:         "c1",
		Content:        "see attached",
		AttachmentName: "notes.txt",
		AttachmentBody: strings.NewReader("hi"),
	})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if resp.Message.ID != "m2" {
		t.Errorf("message id = %q", resp.Message.ID)
	}
}

func TestErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code":"PERMISSION_DENIED","message":"no"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	_, err := c.FetchChats(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T, want *Error", err)
	}
	if apiErr.Code != "PERMISSION_DENIED" || apiErr.Status != http.StatusForbidden {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestFriendlyMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"known code", &Error{Status: 403, Code: "PERMISSION_DENIED"}, "You don't have permission to do that."},
		{"unauthorized", &Error{Status: 401}, "Your session has expired. Please sign in again."},
		{"server message", &Error{Status: 400, Message: "bad input"}, "bad input"},
		{"plain error", errors.New("dial tcp: refused"), "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FriendlyMessage(tt.err); got != tt.want {
				t.Errorf("FriendlyMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizePresence(t *testing.T) {
	raw := map[string]any{
		"u1": true,
		"u2": false,
		"u3": map[string]any{"isOnline": false, "lastSeen": float64(1700000000000)},
		"u4": map[string]any{"isOnline": true, "lastSeen": float64(1700000000000)},
		"u5": "garbage",
	}
	got := NormalizePresence(raw)

	if !got["u1"].Online || got["u2"].Online {
		t.Error("boolean shape not normalized")
	}
	if got["u3"].Online || got["u3"].LastSeen != 1700000000000 {
		t.Errorf("u3 = %+v", got["u3"])
	}
	if !got["u4"].Online || got["u4"].LastSeen != 0 {
		t.Errorf("u4 = %+v, lastSeen must be cleared for online users", got["u4"])
	}
	if got["u5"].Online || got["u5"].LastSeen != 0 {
		t.Errorf("u5 = %+v", got["u5"])
	}
}
