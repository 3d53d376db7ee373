package main

import (
	"fmt"
	"html/template"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// mockState tracks the status and next change time of one mock page.
type mockState struct {
	statusIdx    int
	nextChangeAt time.Time
}

var (
	bitbucketPage = template.Must(template.New("bitbucket").Parse(`<!DOCTYPE html>
<html><head><title>Bitbucket Status</title></head>
<body>
  <div class="page-status">
    <span class="status font-large">{{.}}</span>
  </div>
</body></html>`))

	gitlabPage = template.Must(template.New("gitlab").Parse(`<!DOCTYPE html>
<html><head><title>GitLab System Status</title></head>
<body>
  <div class="row">
    <div class="col-md-8 col-sm-6 col-xs-12">{{.}}</div>
  </div>
</body></html>`))
)

// StartMockStatusServer runs BitBucket- and GitLab-style status pages on
// /bitbucket and /gitlab. Each page changes status every 20-60 seconds.
// Call this in a goroutine before polling.
func StartMockStatusServer(addr string) {
	var (
		states = make(map[string]*mockState)
		mu     sync.Mutex
	)
	statuses := []string{"All Systems Operational", "Partial System Outage", "Major System Outage"}

	page := func(name string, tmpl *template.Template) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			// simulate small latency variance
			time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

			mu.Lock()
			state, exists := states[name]
			if !exists {
				state = &mockState{
					nextChangeAt: time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second),
				}
				states[name] = state
			}
			if time.Now().After(state.nextChangeAt) {
				oldStatus := statuses[state.statusIdx]
				state.statusIdx = (state.statusIdx + 1) % len(statuses)
				state.nextChangeAt = time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
				slog.Info("status change", "page", name, "from", oldStatus, "to", statuses[state.statusIdx])
			}
			status := statuses[state.statusIdx]
			mu.Unlock()

			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if err := tmpl.Execute(w, status); err != nil {
				slog.Error("failed to write page", "page", name, "error", err)
			}
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/bitbucket", page("bitbucket", bitbucketPage))
	mux.Handle("/gitlab", page("gitlab", gitlabPage))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, "not a status page")
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
