// Package server streams solve snapshots to websocket clients.
package server

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"gonum.org/v1/gonum/mat"
)

// client is the slice of *websocket.Conn the hub needs; kept narrow so
// tests can substitute a fake.
type client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub tracks connected clients and fans frames out to them. All client
// bookkeeping happens on the Run goroutine.
type Hub struct {
	clients    map[client]bool
	register   chan client
	unregister chan client
	broadcast  chan []byte
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[client]bool),
		register:   make(chan client),
		unregister: make(chan client),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				c.Close()
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					delete(h.clients, c)
					c.Close()
				}
			}
		case <-h.done:
			for c := range h.clients {
				c.Close()
			}
			return
		}
	}
}

func (h *Hub) Stop() { close(h.done) }

func (h *Hub) Register(c client)   { h.register <- c }
func (h *Hub) Unregister(c client) { h.unregister <- c }

// Broadcast queues a message for all clients, dropping it when the hub
// is saturated so a slow consumer cannot stall the solver.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// Frame is one snapshot as sent to clients.
type Frame struct {
	Epoch  int         `json:"epoch"`
	Final  bool        `json:"final"`
	Rows   int         `json:"rows"`
	Cols   int         `json:"cols"`
	Length float64     `json:"length"`
	Values [][]float64 `json:"values"`
}

// SnapshotBroadcaster adapts the hub to the solver's exporter interface.
type SnapshotBroadcaster struct {
	hub *Hub
}

func NewSnapshotBroadcaster(hub *Hub) *SnapshotBroadcaster {
	return &SnapshotBroadcaster{hub: hub}
}

func (b *SnapshotBroadcaster) ExportSnapshot(full *mat.Dense, length float64, epoch int) error {
	return b.send(full, length, epoch, false)
}

func (b *SnapshotBroadcaster) ExportFinal(full *mat.Dense, length float64) error {
	return b.send(full, length, 0, true)
}

func (b *SnapshotBroadcaster) send(full *mat.Dense, length float64, epoch int, final bool) error {
	rows, cols := full.Dims()
	frame := Frame{
		Epoch:  epoch,
		Final:  final,
		Rows:   rows,
		Cols:   cols,
		Length: length,
		Values: make([][]float64, rows),
	}
	for j := 0; j < rows; j++ {
		row := make([]float64, cols)
		copy(row, full.RawRowView(j))
		frame.Values[j] = row
	}

	msg, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	b.hub.Broadcast(msg)
	return nil
}
