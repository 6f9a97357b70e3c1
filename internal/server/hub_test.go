package server

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"
)

type fakeClient struct {
	messages chan []byte
	failWith error
	closed   chan struct{}
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		messages: make(chan []byte, 8),
		closed:   make(chan struct{}),
	}
}

func (c *fakeClient) WriteMessage(_ int, data []byte) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.messages <- data
	return nil
}

func (c *fakeClient) Close() error {
	close(c.closed)
	return nil
}

func receive(t *testing.T, c *fakeClient) []byte {
	t.Helper()
	select {
	case msg := <-c.messages:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := newFakeClient()
	hub.Register(c)

	hub.Broadcast([]byte("frame"))
	if got := string(receive(t, c)); got != "frame" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestHubDropsFailingClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	bad := newFakeClient()
	bad.failWith = errors.New("gone")
	good := newFakeClient()
	hub.Register(bad)
	hub.Register(good)

	hub.Broadcast([]byte("one"))
	receive(t, good)

	select {
	case <-bad.closed:
	case <-time.After(time.Second):
		t.Fatal("failing client was not closed")
	}

	// Subsequent broadcasts still reach the healthy client.
	hub.Broadcast([]byte("two"))
	if got := string(receive(t, good)); got != "two" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestHubBroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// Must not block even with nobody listening.
	for i := 0; i < 100; i++ {
		hub.Broadcast([]byte("noop"))
	}
}

func TestSnapshotBroadcasterFrames(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := newFakeClient()
	hub.Register(c)

	b := NewSnapshotBroadcaster(hub)
	full := mat.NewDense(2, 3, []float64{0, 1, 2, 3, 4, 5})

	if err := b.ExportSnapshot(full, 9.0, 500); err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	var frame Frame
	if err := json.Unmarshal(receive(t, c), &frame); err != nil {
		t.Fatalf("bad frame json: %v", err)
	}
	if frame.Epoch != 500 || frame.Final {
		t.Errorf("unexpected tags: epoch=%d final=%v", frame.Epoch, frame.Final)
	}
	if frame.Rows != 2 || frame.Cols != 3 || frame.Length != 9.0 {
		t.Errorf("unexpected shape: %+v", frame)
	}
	if frame.Values[1][2] != 5 {
		t.Errorf("unexpected value: %f", frame.Values[1][2])
	}

	if err := b.ExportFinal(full, 9.0); err != nil {
		t.Fatalf("final failed: %v", err)
	}
	if err := json.Unmarshal(receive(t, c), &frame); err != nil {
		t.Fatalf("bad frame json: %v", err)
	}
	if !frame.Final {
		t.Error("final frame not tagged")
	}
}
