package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
)

func TestPushURL(t *testing.T) {
	cases := []struct {
		name string
		base string
		want string
	}{
		{"http", "http://localhost:8080", "ws://localhost:8080/ws?token=tok"},
		{"https", "https://bikes.example.com", "wss://bikes.example.com/ws?token=tok"},
		{"trailing slash", "http://localhost:8080/", "ws://localhost:8080/ws?token=tok"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := pushURL(tc.base, "tok")
			if err != nil {
				t.Fatalf("pushURL: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestJitterBounds(t *testing.T) {
	const d = time.Second
	for i := 0; i < 1000; i++ {
		j := jitter(d)
		if j < d-d/4 || j > d+d/4 {
			t.Fatalf("jitter %v outside [%v, %v]", j, d-d/4, d+d/4)
		}
	}
}

// End to end over a real websocket: the watcher dials, reconciles over the
// read path, applies the pushed snapshot, and stops on cancellation.
func TestWatcher_AppliesPushedSnapshots(t *testing.T) {
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/bikes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteJSON(domain.Snapshot{
			Version: 1,
			Bikes:   []domain.Bike{{ID: "a", Model: "Road Bike", IsAvailable: true}},
		})
		// Hold the connection until the client disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Logger: zerolog.Nop()})
	c.SetToken("tok")
	cache := NewViewCache()

	updates := make(chan domain.Snapshot, 4)
	w := NewWatcher(c, cache, WatcherOptions{
		OnUpdate: func(snap domain.Snapshot) {
			select {
			case updates <- snap:
			default:
			}
		},
		Logger: zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case snap := <-updates:
		if snap.Version != 1 || len(snap.Bikes) != 1 {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the pushed snapshot")
	}

	if b, ok := cache.Bike("a"); !ok || !b.IsAvailable {
		t.Fatalf("cache not updated: %+v, ok=%v", b, ok)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop on cancellation")
	}
}
