package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jpalmerr/servicemonitor"
)

func main() {
	// start mock server (see mock_server.go)
	go StartMockStatusServer(":9999")
	time.Sleep(100 * time.Millisecond)

	storage := filepath.Join(os.TempDir(), "servicemonitor-example.json")

	reg, err := servicemonitor.New(storage,
		servicemonitor.WithRequestTimeout(5*time.Second),
		servicemonitor.WithLineCallback(func(l servicemonitor.Line) {
			fmt.Println(l.Text)
		}),
	)
	if err != nil {
		slog.Error("failed to create registry", "error", err)
		os.Exit(1)
	}

	if err := reg.Reconcile([]string{
		"bitbucket|BitBucket|http://localhost:9999/bitbucket",
		"gitlab|GitLab|http://localhost:9999/gitlab",
	}); err != nil {
		slog.Error("invalid services", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  servicemonitor demo")
	fmt.Println()
	fmt.Println("  Polling 2 mock status pages every 5s")
	fmt.Printf("  Snapshot: %s\n", storage)
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := reg.Watch(ctx, 5*time.Second, nil); err != nil {
		slog.Error("watch error", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\n%d lines recorded\n", len(reg.History()))
}
