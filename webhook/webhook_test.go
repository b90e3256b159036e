package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/fahndung/models"
)

func TestDeliver_SignsBody(t *testing.T) {
	var got Event
	var signature string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		signature = r.Header.Get(SignatureHeader)
		if signature != Sign("s3cret", body) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := New(srv.URL, "s3cret", nil)
	err := n.Deliver(context.Background(), &Event{Type: "session.completed", SessionID: "abc"})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if got.SessionID != "abc" || got.Type != "session.completed" {
		t.Errorf("received event = %+v", got)
	}
	if len(signature) != len("sha256=")+64 {
		t.Errorf("signature = %q", signature)
	}
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := New(srv.URL, "", nil).Deliver(context.Background(), &Event{}); err == nil {
		t.Error("Deliver() should fail on 502")
	}
}

func TestSessionFinished_RetriesUntilDelivered(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var ev Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		if ev.Type != "session.partially_failed" {
			t.Errorf("event type = %q", ev.Type)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, "", nil)
	n.Delays = []time.Duration{0, time.Millisecond, time.Millisecond}

	done := make(chan error, 1)
	n.DeliverAsync(&Event{Type: "session.partially_failed", SessionID: "x"}, func(err error) { done <- err })

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("delivery failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("delivery did not finish")
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestSessionFinished_EventType(t *testing.T) {
	received := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		received <- ev
	}))
	defer srv.Close()

	n := New(srv.URL, "", nil)
	n.SessionFinished(models.SessionReport{ID: "s1", State: models.SessionCompleted, FinishedAt: time.Unix(1718438400, 0)})

	select {
	case ev := <-received:
		if ev.Type != "session.completed" || ev.SessionID != "s1" || ev.Timestamp != 1718438400 {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}
}
