package signaling

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/serenityapp/signaling/internal/metrics"
)

func TestHubReadyTracksRunLoop(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(log, metrics.New())

	if err := hub.Ready(); err == nil {
		t.Fatalf("hub should not be ready before Run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Ready() != nil {
		if time.Now().After(deadline) {
			t.Fatalf("hub never became ready")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	<-done
	if err := hub.Ready(); err == nil {
		t.Fatalf("hub should not be ready after Run returns")
	}
}

func TestHubEmitToUnknownConnectionIsNoop(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(log, metrics.New())

	// Must not panic or block.
	hub.emit("nobody", &serverMessage{Event: eventWaitingForPeer})
}
