package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"uetp/internal/protocol"

	"gopkg.in/inconshreveable/log15.v2"
)

// Config holds the connection settings for one endpoint
type Config struct {
	Host           string
	Port           int
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	RetryOnFailure bool
	MaxRetries     int
	RetryDelay     time.Duration
}

// Addr returns the host:port dial target
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Connection owns one socket to the editor bridge. Each test gets its
// own Connection. Send is not safe for concurrent use; Disconnect may
// be called from another goroutine to tear a stalled socket down.
type Connection struct {
	cfg Config

	mu   sync.Mutex
	conn net.Conn

	attempts int
	retries  int
	lastErr  error
}

// New creates an unconnected Connection
func New(cfg Config) *Connection {
	return &Connection{cfg: cfg}
}

// Connect dials the endpoint. When RetryOnFailure is set it makes up to
// MaxRetries attempts in total, sleeping RetryDelay between them, and
// returns the last dial error once they are exhausted.
func (c *Connection) Connect() error {
	if c.socket() != nil {
		return nil
	}
	maxAttempts := 1
	if c.cfg.RetryOnFailure && c.cfg.MaxRetries > 0 {
		maxAttempts = c.cfg.MaxRetries
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		c.attempts++
		if attempt > 1 {
			c.retries++
		}
		conn, err := net.DialTimeout("tcp", c.cfg.Addr(), c.cfg.ConnectTimeout)
		if err == nil {
			c.setSocket(conn)
			log15.Debug("connected", "addr", c.cfg.Addr(), "attempt", attempt)
			return nil
		}
		c.lastErr = err
		log15.Debug("connect attempt failed", "addr", c.cfg.Addr(), "attempt", attempt, "err", err)
		if attempt < maxAttempts {
			time.Sleep(c.cfg.RetryDelay)
		}
	}
	return fmt.Errorf("connect to %s failed after %d attempts: %w", c.cfg.Addr(), maxAttempts, c.lastErr)
}

// Send frames one request and reads one full reply. Every failure comes
// back as a failed envelope; nothing escapes this boundary. A command
// is never resent: on any transport error the socket is torn down and
// the error is reported, so side effects cannot be duplicated.
func (c *Connection) Send(command string, params map[string]any) protocol.Response {
	conn := c.socket()
	if conn == nil {
		if err := c.Connect(); err != nil {
			return protocol.Errorf("%v", err)
		}
		conn = c.socket()
	}
	if params == nil {
		params = map[string]any{}
	}
	payload, err := json.Marshal(protocol.Request{Type: command, Params: params})
	if err != nil {
		return protocol.Errorf("encode %s request: %v", command, err)
	}

	// One absolute deadline bounds the whole exchange.
	if err := conn.SetDeadline(time.Now().Add(c.cfg.CommandTimeout)); err != nil {
		c.Disconnect()
		return protocol.Errorf("%s: set deadline: %v", command, err)
	}
	if _, err := conn.Write(payload); err != nil {
		c.Disconnect()
		return c.failure(command, err)
	}
	frame, err := protocol.ReadFrame(conn)
	if err != nil {
		c.Disconnect()
		return c.failure(command, err)
	}
	// The bridge serves one command per connection and closes its side
	// after the reply. Drop ours too; the next Send dials fresh.
	c.Disconnect()
	return protocol.Normalize(frame)
}

// Disconnect closes the socket. Safe to call repeatedly and safe when
// the connection never opened.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// Attempts reports the total dial attempts made over the connection's
// lifetime, counting reconnects between commands
func (c *Connection) Attempts() int { return c.attempts }

// Retries reports how many dial attempts were retries, i.e. attempts
// beyond the first within each Connect call
func (c *Connection) Retries() int { return c.retries }

// failure classifies a transport error into a failed envelope
func (c *Connection) failure(command string, err error) protocol.Response {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return protocol.Errorf("timeout waiting for %s response after %s", command, c.cfg.CommandTimeout)
	}
	return protocol.Errorf("%s failed: %v", command, err)
}

func (c *Connection) socket() net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *Connection) setSocket(conn net.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}
