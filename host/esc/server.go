package esc

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// PowerRequest is the body of PUT /power and the reply of GET /power
type PowerRequest struct {
	Values []uint8 `json:"values"`
}

// Status is the reply of GET /status
type Status struct {
	Channels int     `json:"channels"`
	Sent     uint64  `json:"sent"`
	Last     []uint8 `json:"last"`
}

// Server exposes a Link over HTTP. Firmware echo lines are streamed to
// websocket clients on /echoes.
type Server struct {
	link     *Link
	router   *mux.Router
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[chan string]struct{}
}

// NewServer creates the HTTP API for link
func NewServer(link *Link) *Server {
	s := &Server{
		link: link,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		subs: make(map[chan string]struct{}),
	}

	s.router = mux.NewRouter()
	s.router.HandleFunc("/power", s.getPower).Methods("GET", "HEAD")
	s.router.HandleFunc("/power", s.setPower).Methods("PUT", "POST")
	s.router.HandleFunc("/stop", s.stop).Methods("POST")
	s.router.HandleFunc("/status", s.status).Methods("GET", "HEAD")
	s.router.HandleFunc("/echoes", s.echoes).Methods("GET")
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Publish forwards a firmware echo line to every websocket client.
// Slow clients miss lines.
func (s *Server) Publish(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- line:
		default:
		}
	}
}

func (s *Server) subscribe() chan string {
	ch := make(chan string, 16)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan string) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

func (s *Server) getPower(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PowerRequest{Values: s.link.Last()})
}

func (s *Server) setPower(w http.ResponseWriter, r *http.Request) {
	var req PowerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Values) == 0 {
		http.Error(w, "values required", http.StatusBadRequest)
		return
	}
	if err := s.link.SetPower(req.Values...); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, PowerRequest{Values: s.link.Last()})
}

func (s *Server) stop(w http.ResponseWriter, r *http.Request) {
	if err := s.link.Stop(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Status{
		Channels: s.link.Channels(),
		Sent:     s.link.Sent(),
		Last:     s.link.Last(),
	})
}

func (s *Server) echoes(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	// Detect client close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case line := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Warningf("failed to encode reply: %v", err)
	}
}
