package mockserver

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"

	"uetp/internal/protocol"

	"gopkg.in/inconshreveable/log15.v2"
)

// Server is an in-process stand-in for the editor bridge. Offline runs
// and the package tests point the transport at it instead of a live
// editor. Replies are canned per command name; every request is logged
// in arrival order.
type Server struct {
	host   string
	port   int
	strict bool

	ln net.Listener

	mu        sync.Mutex
	responses map[string]map[string]any
	received  []protocol.Request
	total     int
	active    int
	peak      int
}

// New creates a stopped server. Port 0 binds an OS-assigned port.
func New(host string, port int) *Server {
	return &Server{
		host:      host,
		port:      port,
		responses: make(map[string]map[string]any),
	}
}

// SetStrict makes unregistered commands answer with an error envelope.
// The default is off: an unregistered command gets a generic success
// envelope echoing its name. Set before Start.
func (s *Server) SetStrict(strict bool) {
	s.strict = strict
}

// Register sets the canned reply for a command. The reply document is
// written as-is, so any of the bridge's response shapes can be staged.
func (s *Server) Register(command string, response map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[command] = response
}

// RegisterDefaults stages the replies the bundled sample modules expect
func (s *Server) RegisterDefaults() {
	s.Register("get_actors_in_level", map[string]any{"success": true, "result": []any{}})
	s.Register("spawn_actor", map[string]any{"success": true, "result": "Test actor spawned"})
	s.Register("delete_actor", map[string]any{"success": true, "result": "Test actor deleted"})
}

// Start binds the listener and begins accepting in the background.
// Bind errors, such as a port already in use, surface here.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)))
	if err != nil {
		return fmt.Errorf("mock server bind %s:%d: %w", s.host, s.port, err)
	}
	s.ln = ln
	log15.Debug("mock server listening", "addr", ln.Addr().String())
	go s.acceptLoop(ln)
	return nil
}

// Stop closes the listener, which unblocks the accept loop. In-flight
// connection handlers are short-lived and not joined. Safe to call
// repeatedly and safe when Start never succeeded.
func (s *Server) Stop() {
	if s.ln != nil {
		s.ln.Close()
		s.ln = nil
	}
}

// Addr returns the bound address, empty before Start
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Port returns the bound port, 0 before Start. Useful when the server
// was started on port 0.
func (s *Server) Port() int {
	if s.ln == nil {
		return 0
	}
	return s.ln.Addr().(*net.TCPAddr).Port
}

// ReceivedCommands returns a copy of the ordered request log
func (s *Server) ReceivedCommands() []protocol.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Request, len(s.received))
	copy(out, s.received)
	return out
}

// TotalConnections counts every connection accepted and handled
func (s *Server) TotalConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// PeakConcurrent reports the highest number of connections handled at
// the same time
func (s *Server) PeakConcurrent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Listener closed by Stop.
			return
		}
		go s.handle(conn)
	}
}

// handle serves one request/response exchange and closes the connection
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	s.mu.Lock()
	s.total++
	s.active++
	if s.active > s.peak {
		s.peak = s.active
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	frame, err := protocol.ReadFrame(conn)
	if err != nil {
		log15.Debug("mock server: bad frame", "err", err)
		return
	}
	req, err := protocol.ParseRequest(frame)
	if err != nil {
		log15.Debug("mock server: bad request", "err", err)
		return
	}

	s.mu.Lock()
	s.received = append(s.received, req)
	response, registered := s.responses[req.Type]
	s.mu.Unlock()

	if !registered {
		if s.strict {
			response = map[string]any{
				"success": false,
				"error":   fmt.Sprintf("no response registered for command %q", req.Type),
			}
		} else {
			response = map[string]any{
				"success": true,
				"result":  fmt.Sprintf("Mock response for %s", req.Type),
			}
		}
	}

	payload, err := json.Marshal(response)
	if err != nil {
		log15.Error("mock server: encode response", "command", req.Type, "err", err)
		return
	}
	if _, err := conn.Write(payload); err != nil {
		log15.Debug("mock server: write response", "command", req.Type, "err", err)
	}
}
