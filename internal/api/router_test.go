package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/service"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/push"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/registry"
)

const testJWTSecret = "router-test-secret"

// newTestServer wires the full stack on the in-memory registry. The router is
// built once per binary because the metrics middleware registers collectors
// globally.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	hub := push.NewHub(zerolog.Nop())
	rentalService := service.NewRentalService(registry.NewMemory(), hub, nil, zerolog.Nop())
	authService := service.NewAuthService(registry.NewMemoryUsers(), testJWTSecret, time.Hour)

	e := NewRouter(Deps{
		AuthService:   authService,
		RentalService: rentalService,
		Hub:           hub,
		JWTSecret:     testJWTSecret,
		Logger:        zerolog.Nop(),
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, token, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("%s %s: read body: %v", method, path, err)
	}
	return resp.StatusCode, data
}

func signup(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()

	creds := `{"username":"` + username + `","password":"` + password + `"}`
	if code, _ := doRequest(t, srv, http.MethodPost, "/api/register", "", creds); code != http.StatusCreated {
		t.Fatalf("register %s: got %d", username, code)
	}
	code, body := doRequest(t, srv, http.MethodPost, "/api/login", "", creds)
	if code != http.StatusOK {
		t.Fatalf("login %s: got %d", username, code)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Token == "" {
		t.Fatalf("login %s: bad body %s", username, body)
	}
	return resp.Token
}

func TestRouter_EndToEnd(t *testing.T) {
	srv := newTestServer(t)

	// Probes are public.
	if code, _ := doRequest(t, srv, http.MethodGet, "/health", "", ""); code != http.StatusOK {
		t.Fatalf("health: got %d", code)
	}

	// The inventory requires auth.
	if code, _ := doRequest(t, srv, http.MethodGet, "/api/bikes", "", ""); code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated bikes: got %d", code)
	}

	alice := signup(t, srv, "alice", "s3cret")
	bob := signup(t, srv, "bob", "hunter2")

	// Duplicate registration conflicts.
	if code, _ := doRequest(t, srv, http.MethodPost, "/api/register", "", `{"username":"alice","password":"x"}`); code != http.StatusConflict {
		t.Fatalf("duplicate register: got %d", code)
	}

	// Alice lists a bike.
	code, body := doRequest(t, srv, http.MethodPost, "/api/list-bike", alice,
		`{"model":"Road Bike","location":"Gamma","modelYear":2022,"rentRate":30,"contactNumber":"555-1234"}`)
	if code != http.StatusCreated {
		t.Fatalf("list-bike: got %d (%s)", code, body)
	}
	var bike domain.Bike
	if err := json.Unmarshal(body, &bike); err != nil || bike.ID == "" {
		t.Fatalf("list-bike: bad body %s", body)
	}

	// Bob opens the push channel and immediately receives the current state.
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + bob
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial push channel: %v", err)
	}
	defer conn.Close()

	snap := readSnapshot(t, conn)
	if len(snap.Bikes) != 1 || snap.Bikes[0].ID != bike.ID {
		t.Fatalf("initial snapshot: %+v", snap)
	}

	// Bob books it; the push channel reflects the booking.
	if code, _ := doRequest(t, srv, http.MethodPost, "/api/book", bob, `{"bikeId":"`+bike.ID+`"}`); code != http.StatusOK {
		t.Fatalf("book: got %d", code)
	}
	snap = readSnapshot(t, conn)
	if snap.Bikes[0].IsAvailable || snap.Bikes[0].BookedBy != "bob" {
		t.Fatalf("post-booking snapshot: %+v", snap.Bikes[0])
	}

	// Booked bikes cannot be removed or double-booked.
	if code, _ := doRequest(t, srv, http.MethodPost, "/api/remove-bike", alice, `{"bikeId":"`+bike.ID+`"}`); code != http.StatusConflict {
		t.Fatalf("remove booked bike: got %d", code)
	}
	if code, _ := doRequest(t, srv, http.MethodPost, "/api/book", bob, `{"bikeId":"`+bike.ID+`"}`); code != http.StatusConflict {
		t.Fatalf("double booking: got %d", code)
	}

	// Only the booker can return it.
	if code, _ := doRequest(t, srv, http.MethodPost, "/api/return", alice, `{"bikeId":"`+bike.ID+`"}`); code != http.StatusForbidden {
		t.Fatalf("foreign return: got %d", code)
	}
	if code, _ := doRequest(t, srv, http.MethodPost, "/api/return", bob, `{"bikeId":"`+bike.ID+`"}`); code != http.StatusOK {
		t.Fatalf("return: got %d", code)
	}

	// Now the owner can remove it.
	if code, _ := doRequest(t, srv, http.MethodPost, "/api/remove-bike", alice, `{"bikeId":"`+bike.ID+`"}`); code != http.StatusOK {
		t.Fatalf("remove: got %d", code)
	}

	// Unknown ids surface as 404.
	if code, _ := doRequest(t, srv, http.MethodPost, "/api/book", bob, `{"bikeId":"missing"}`); code != http.StatusNotFound {
		t.Fatalf("book unknown bike: got %d", code)
	}

	// The push channel rejects bad tokens before upgrading.
	badURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
	if _, resp, err := websocket.DefaultDialer.Dial(badURL, nil); err == nil {
		t.Fatal("expected dial with bad token to fail")
	} else if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake rejection, got %+v", resp)
	}
}

func readSnapshot(t *testing.T, conn *websocket.Conn) domain.Snapshot {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var snap domain.Snapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	return snap
}
