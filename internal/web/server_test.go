package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
	"touchline/internal/back"
	"touchline/internal/config"
	"touchline/internal/web"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jonboulle/clockwork"
)

func createTestServer(t *testing.T) (*httptest.Server, *back.Back, *clockwork.FakeClock) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	migrator, err := migrate.New("file://../../resources/migrations", "sqlite3://"+path)
	if err != nil {
		t.Fatal(err)
	}
	if err := migrator.Up(); err != nil {
		t.Fatal(err)
	}
	migrator.Close()

	cfg := &config.Config{
		DBPath:        path,
		SweepInterval: 30 * time.Second,
		MatchTimeout:  5 * time.Second,
		BusyTimeout:   5 * time.Second,
		KickoffPeriod: 15 * time.Minute,
	}

	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	b, err := back.New(cfg, clock)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })

	if err := b.LoadFixtures(context.Background()); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(web.NewServer(b, "").Handler())
	t.Cleanup(ts.Close)

	return ts, b, clock
}

func get(t *testing.T, ts *httptest.Server, path string, expectedCode int, dst interface{}) *http.Response {
	t.Helper()

	res, err := http.Get(ts.URL + path) // nolint:noctx
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	if res.StatusCode != expectedCode {
		t.Fatalf("%s: expected status %d, got %d", path, expectedCode, res.StatusCode)
	}

	if dst != nil {
		if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
			t.Fatalf("%s: %v", path, err)
		}
	}

	return res
}

func TestIndex(t *testing.T) {
	ts, _, _ := createTestServer(t)
	get(t, ts, "/", http.StatusNoContent, nil)
	get(t, ts, "/nope", http.StatusNotFound, nil)
}

func TestGetClubs(t *testing.T) {
	ts, b, _ := createTestServer(t)

	user, err := b.EnsureRegistered(context.Background(), "42", "Jane")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Claim(context.Background(), user.ID, 2); err != nil {
		t.Fatal(err)
	}

	var clubs []struct {
		ID        int64
		Name      string
		OwnerID   *int64
		OwnerName *string
		Rating    float64
	}
	res := get(t, ts, "/v1/clubs", http.StatusOK, &clubs)

	if res.Header.Get("Cache-Control") != "public,max-age=30" {
		t.Errorf("unexpected Cache-Control %q", res.Header.Get("Cache-Control"))
	}
	if len(clubs) != 6 {
		t.Fatalf("expected 6 clubs, got %d", len(clubs))
	}
	if clubs[1].OwnerName == nil || *clubs[1].OwnerName != "Jane" || *clubs[1].OwnerID != user.ID {
		t.Errorf("expected Jane to manage club 2, got %+v", clubs[1])
	}
	if clubs[0].OwnerID != nil || clubs[0].Rating != 50 {
		t.Errorf("unexpected club %+v", clubs[0])
	}
}

func TestGetClub(t *testing.T) {
	ts, _, _ := createTestServer(t)

	var data struct {
		Club struct {
			ID   int64
			Name string
		}
		Players []struct {
			Name   string
			Rating int
		}
	}
	get(t, ts, "/v1/club/1", http.StatusOK, &data)

	if data.Club.Name != "Ashford Rovers" || len(data.Players) != back.RosterSize {
		t.Errorf("unexpected club %+v", data)
	}

	get(t, ts, "/v1/club/404", http.StatusNotFound, nil)
	get(t, ts, "/v1/club/abc", http.StatusBadRequest, nil)
}

func TestGetMatches(t *testing.T) {
	ts, b, clock := createTestServer(t)

	var matches []struct {
		ID           int64
		Status       string
		HomeClubName string
		AwayClubName string
		PlayedAt     *time.Time
	}

	get(t, ts, "/v1/matches", http.StatusOK, &matches)
	if len(matches) != 0 {
		t.Fatalf("expected no played match yet, got %+v", matches)
	}

	get(t, ts, "/v1/matches?status=scheduled", http.StatusOK, &matches)
	if len(matches) != 3 || matches[0].HomeClubName != "Ashford Rovers" {
		t.Fatalf("unexpected scheduled matches %+v", matches)
	}

	clock.Advance(time.Hour)
	if _, err := b.RunDueSweep(context.Background(), clock.Now()); err != nil {
		t.Fatal(err)
	}

	matches = nil
	get(t, ts, "/v1/matches?status=played", http.StatusOK, &matches)
	if len(matches) != 3 {
		t.Fatalf("expected 3 played matches, got %+v", matches)
	}
	for _, v := range matches {
		if v.Status != "played" || v.PlayedAt == nil {
			t.Errorf("unexpected match %+v", v)
		}
	}

	get(t, ts, "/v1/matches?status=abandoned", http.StatusBadRequest, nil)
}
