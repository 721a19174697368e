// internal/writer/runner_test.go
package writer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/netclass/internal/netclass"
	"github.com/tamzrod/netclass/internal/status"
)

type recordingWriter struct {
	ch chan status.Snapshot
}

func (r *recordingWriter) WriteStatus(s status.Snapshot) error {
	r.ch <- s
	return nil
}

func next(t *testing.T, ch <-chan status.Snapshot) status.Snapshot {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for status write")
		return status.Snapshot{}
	}
}

func TestRun_PublishesChanges(t *testing.T) {
	rw := &recordingWriter{ch: make(chan status.Snapshot, 16)}
	updates := make(chan netclass.Class)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, netclass.WiFi, updates, rw, nil)
		close(done)
	}()

	first := next(t, rw.ch)
	assert.Equal(t, status.Snapshot{Class: netclass.WiFi.Code()}, first)

	// same class: no write, no counter bump
	updates <- netclass.WiFi
	updates <- netclass.Mobile5G

	var got status.Snapshot
	for {
		got = next(t, rw.ch)
		if got.Class == netclass.Mobile5G.Code() {
			break
		}
	}
	assert.Equal(t, uint16(1), got.Changes)
	assert.Equal(t, uint16(0), got.SecondsInClass)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestRun_ReturnsWhenUpdatesClosed(t *testing.T) {
	rw := &recordingWriter{ch: make(chan status.Snapshot, 16)}
	updates := make(chan netclass.Class)
	close(updates)

	done := make(chan struct{})
	go func() {
		Run(context.Background(), netclass.Unreachable, updates, rw, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after updates closed")
	}
	require.Len(t, rw.ch, 1)
}
