package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"sync"
	"time"

	"lithos/internal/core"
	"lithos/internal/sims/lithosphere"

	"github.com/gorilla/websocket"
)

// frameHeader precedes every binary frame so clients can size their buffers.
type frameHeader struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Tick   int `json:"tick"`
}

type server struct {
	mu      sync.Mutex
	world   *lithosphere.World
	clients map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

func newServer(world *lithosphere.World) *server {
	return &server{
		world:   world,
		clients: map[*websocket.Conn]struct{}{},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade: %v", err)
		return
	}
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Drain (and discard) client messages so pings keep working.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.mu.Lock()
				delete(s.clients, conn)
				s.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

func (s *server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	snapshot := s.world.Parameters()
	tick := s.world.Tick()
	land := s.world.LandFraction()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Tick         int                    `json:"tick"`
		LandFraction float64                `json:"landFraction"`
		Parameters   core.ParameterSnapshot `json:"parameters"`
	}{tick, land, snapshot})
}

// broadcast sends the current display raster to every connected client: a
// JSON header first, then the raw cells as one binary message.
func (s *server) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := s.world.Size()
	header, err := json.Marshal(frameHeader{Width: size.W, Height: size.H, Tick: s.world.Tick()})
	if err != nil {
		log.Printf("marshal header: %v", err)
		return
	}
	cells := s.world.Cells()

	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, header); err == nil {
			err = conn.WriteMessage(websocket.BinaryMessage, cells)
		}
		if err != nil {
			delete(s.clients, conn)
			conn.Close()
		}
	}
}

func (s *server) step() {
	s.mu.Lock()
	s.world.Step()
	if err := s.world.Err(); err != nil {
		log.Printf("world error: %v", err)
	}
	s.mu.Unlock()
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	width := flag.Int("w", 256, "world width")
	height := flag.Int("h", 256, "world height")
	seed := flag.Int64("seed", 1337, "world seed")
	tps := flag.Int("tps", 20, "simulation ticks per second")
	flag.Parse()

	cfg := lithosphere.DefaultConfig()
	cfg.Width = *width
	cfg.Height = *height
	cfg.Seed = *seed

	world := lithosphere.NewWithConfig(cfg)
	world.Reset(*seed)

	s := newServer(world)
	http.HandleFunc("/ws", s.handleWS)
	http.HandleFunc("/status", s.handleStatus)

	go func() {
		ticker := core.NewFixedStep(*tps)
		for {
			if ticker.ShouldStep() {
				s.step()
				s.broadcast()
				continue
			}
			time.Sleep(time.Millisecond)
		}
	}()

	log.Printf("terra-server listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
