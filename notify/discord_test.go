package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tracker "github.com/ashiven/cs2tracker"
	"github.com/ashiven/cs2tracker/pricelog"
)

func testLog(t *testing.T, contents string) *pricelog.Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "price_logs.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	sources := []tracker.MarketSource{tracker.Steam, tracker.Buff163, tracker.CSFloat}
	return pricelog.New(path, sources, "USD")
}

func TestNotifyPostsRecentHistory(t *testing.T) {
	var got message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("cannot decode webhook payload: %v", err)
		}
	}))
	defer srv.Close()

	log := testLog(t, `2025-08-25,1.00$,10.00$,100.00$
2025-08-26,2.00$,20.00$,200.00$
2025-08-27,3.00$,30.00$,300.00$
2025-08-28,4.00$,40.00$,400.00$
2025-08-29,5.00$,50.00$,500.00$
2025-08-30,6.00$,60.00$,600.00$
2025-08-31,7.00$,70.00$,700.00$
`)
	n := NewDiscord(srv.URL, log)
	if err := n.Notify(); err != nil {
		t.Fatal(err)
	}

	if got.Username != "CS2Tracker" {
		t.Errorf("username = %q", got.Username)
	}
	if len(got.Embeds) != 1 {
		t.Fatalf("got %d embeds, want 1", len(got.Embeds))
	}
	fields := got.Embeds[0].Fields
	if len(fields) != 3 {
		t.Fatalf("got %d fields, want date plus two sources", len(fields))
	}

	dates := strings.Split(fields[0].Value, "\n")
	if len(dates) != 5 {
		t.Errorf("got %d history rows, want 5", len(dates))
	}
	if dates[0] != "2025-08-31" {
		t.Errorf("first row = %q, want the newest date", dates[0])
	}
	if fields[1].Name != "Steam" || fields[2].Name != "Buff163" {
		t.Errorf("source fields = %q, %q", fields[1].Name, fields[2].Name)
	}
	if !strings.HasPrefix(fields[1].Value, "7.00$") {
		t.Errorf("steam column = %q, want newest amount first", fields[1].Value)
	}
}

func TestNotifyFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	log := testLog(t, "2025-08-31,7.00$,70.00$,700.00$\n")

	if err := NewDiscord(srv.URL, log).Notify(); err == nil {
		t.Error("Notify() ignored a rejected webhook call")
	}
	if err := NewDiscord("", log).Notify(); err == nil {
		t.Error("Notify() accepted an empty webhook URL")
	}

	empty := pricelog.New(filepath.Join(t.TempDir(), "none.csv"), log.Sources, "USD")
	if err := NewDiscord(srv.URL, empty).Notify(); err == nil {
		t.Error("Notify() reported an empty log")
	}
}
