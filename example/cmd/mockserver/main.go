// Standalone mock status page server for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/servicemonitor fetch -c example/servicemonitor.yaml
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"
)

const (
	bitbucketTemplate = `<html><body><span class="status font-large">%s</span></body></html>`
	gitlabTemplate    = `<html><body><div class="col-md-8 col-sm-6 col-xs-12">%s</div></body></html>`
)

func main() {
	fmt.Println("Mock status page server starting on :9999")
	fmt.Println("Pages: /bitbucket /gitlab /broken")
	fmt.Println("Statuses cycle through: operational → partial outage → major outage")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		states   = make(map[string]*mockState)
		mu       sync.Mutex
		statuses = []string{"All Systems Operational", "Partial System Outage", "Major System Outage"}
	)

	current := func(key string) string {
		mu.Lock()
		defer mu.Unlock()

		state, exists := states[key]
		if !exists {
			state = &mockState{
				nextChangeAt: time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second),
			}
			states[key] = state
		}
		if time.Now().After(state.nextChangeAt) {
			oldStatus := statuses[state.statusIdx]
			state.statusIdx = (state.statusIdx + 1) % len(statuses)
			state.nextChangeAt = time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
			slog.Info("status change", "page", key, "from", oldStatus, "to", statuses[state.statusIdx])
		}
		return statuses[state.statusIdx]
	}

	serve := func(key, tmpl string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintf(w, tmpl, current(key))
		}
	}

	http.HandleFunc("/bitbucket", serve("bitbucket", bitbucketTemplate))
	http.HandleFunc("/gitlab", serve("gitlab", gitlabTemplate))

	// answers, but without a status element, to show extraction failures
	http.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><p>under maintenance</p></body></html>`)
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

type mockState struct {
	statusIdx    int
	nextChangeAt time.Time
}
