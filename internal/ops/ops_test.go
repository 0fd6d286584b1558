package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hpungsan/chronobox/internal/calendar"
	"github.com/hpungsan/chronobox/internal/capsule"
	"github.com/hpungsan/chronobox/internal/config"
	"github.com/hpungsan/chronobox/internal/db"
	"github.com/hpungsan/chronobox/internal/session"
	"github.com/hpungsan/chronobox/internal/store"
)

// testEnv wires a store and a gateway against a fake Google backend.
type testEnv struct {
	store        *store.Store
	session      *session.Session
	gateway      *calendar.Gateway
	cfg          *config.Config
	calendarHits *atomic.Int64

	insertStatus *int
	getStatus    *int
}

// newTestEnv builds the full fixture with a signed-in session.
func newTestEnv(t *testing.T) *testEnv {
	return buildTestEnv(t, true)
}

// newSignedOutEnv builds the fixture with an initialized but signed-out session.
func newSignedOutEnv(t *testing.T) *testEnv {
	return buildTestEnv(t, false)
}

func buildTestEnv(t *testing.T, signedIn bool) *testEnv {
	t.Helper()

	hits := &atomic.Int64{}
	insertStatus := 200
	getStatus := 200

	mux := http.NewServeMux()
	mux.HandleFunc("/discovery", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("POST /calendar/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if insertStatus != 200 {
			w.WriteHeader(insertStatus)
			fmt.Fprintf(w, `{"error":{"code":%d,"message":"backend error"}}`, insertStatus)
			return
		}
		fmt.Fprint(w, `{"id":"evt-123","summary":"Time Capsule Opening: test","status":"confirmed"}`)
	})
	mux.HandleFunc("GET /calendar/calendars/primary/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if getStatus != 200 {
			w.WriteHeader(getStatus)
			fmt.Fprintf(w, `{"error":{"code":%d,"message":"not found"}}`, getStatus)
			return
		}
		fmt.Fprintf(w, `{"id":%q,"summary":"Time Capsule Opening: test","status":"confirmed","start":{"dateTime":"2030-05-01T15:00:00Z"}}`, r.PathValue("id"))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	cfg := config.DefaultConfig()
	cfg.GoogleClientID = "client-123.apps.googleusercontent.com"
	cfg.HTTPTimeoutSeconds = 5
	cfg.TimeZone = "UTC"

	endpoints := session.Endpoints{
		AuthURL:         ts.URL + "/auth",
		TokenURL:        ts.URL + "/token",
		RevokeURL:       ts.URL + "/revoke",
		DiscoveryURL:    ts.URL + "/discovery",
		CalendarBaseURL: ts.URL + "/calendar/",
	}

	baseDir := t.TempDir()
	if signedIn {
		token := map[string]any{
			"access_token": "tok-abc",
			"token_type":   "Bearer",
			"expiry":       time.Now().Add(time.Hour).Format(time.RFC3339),
		}
		data, err := json.Marshal(token)
		if err != nil {
			t.Fatalf("marshal token: %v", err)
		}
		if err := os.WriteFile(filepath.Join(baseDir, "token.json"), data, 0600); err != nil {
			t.Fatalf("write token cache: %v", err)
		}
	}

	sess := session.New(cfg, endpoints, baseDir)
	if err := sess.Init(context.Background()); err != nil {
		t.Fatalf("session.Init failed: %v", err)
	}
	if signedIn {
		if err := sess.SignIn(context.Background()); err != nil {
			t.Fatalf("session.SignIn failed: %v", err)
		}
	}

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	env := &testEnv{
		store:        store.New(database),
		session:      sess,
		gateway:      calendar.New(sess, cfg),
		cfg:          cfg,
		calendarHits: hits,
		insertStatus: &insertStatus,
		getStatus:    &getStatus,
	}
	return env
}

func TestProjectItem_LockedWithholdsContent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := &capsule.Capsule{
		ID:         "cap-1",
		Message:    "secret",
		ImageURL:   "data:image/png;base64,AAAA",
		Title:      "secret",
		UnlockDate: now.Add(25 * time.Hour),
		CreatedAt:  now.Add(-time.Hour),
	}

	item := projectItem(c, now)

	if item.State != capsule.StateLocked {
		t.Fatalf("State = %q, want locked", item.State)
	}
	if item.Message != "" || item.ImageURL != "" {
		t.Error("locked item must not expose message or image")
	}
	if item.Remaining == nil {
		t.Fatal("Remaining = nil, want countdown")
	}
	if item.Countdown != "1d 1h 0m 0s" {
		t.Errorf("Countdown = %q, want %q", item.Countdown, "1d 1h 0m 0s")
	}
}

func TestProjectItem_UnlockedRevealsContent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := &capsule.Capsule{
		ID:         "cap-1",
		Message:    "secret",
		ImageURL:   "data:image/png;base64,AAAA",
		Title:      "secret",
		UnlockDate: now.Add(-time.Second),
		CreatedAt:  now.Add(-time.Hour),
	}

	item := projectItem(c, now)

	if item.State != capsule.StateUnlocked {
		t.Fatalf("State = %q, want unlocked", item.State)
	}
	if item.Message != "secret" {
		t.Errorf("Message = %q, want %q", item.Message, "secret")
	}
	if item.ImageURL == "" {
		t.Error("unlocked item should expose the image")
	}
	if item.Remaining != nil {
		t.Error("Remaining should be nil when unlocked")
	}
}

func TestGenerateULID(t *testing.T) {
	id, err := generateULID()
	if err != nil {
		t.Fatalf("generateULID failed: %v", err)
	}
	if len(id) != 26 {
		t.Errorf("len(id) = %d, want 26 (ULID)", len(id))
	}
}
