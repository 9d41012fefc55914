package transport

import (
	"encoding/json"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"uetp/internal/mockserver"
	"uetp/internal/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(port int) Config {
	return Config{
		Host:           "127.0.0.1",
		Port:           port,
		ConnectTimeout: 500 * time.Millisecond,
		CommandTimeout: 2 * time.Second,
	}
}

func startMock(t *testing.T) *mockserver.Server {
	t.Helper()
	srv := mockserver.New("127.0.0.1", 0)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return srv
}

// closedPort returns a loopback port with nothing listening on it
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func TestSendRoundTrip(t *testing.T) {
	srv := startMock(t)
	srv.Register("ping", map[string]any{"success": true, "result": "pong"})

	conn := New(testConfig(srv.Port()))
	require.NoError(t, conn.Connect())
	defer conn.Disconnect()

	resp := conn.Send("ping", nil)
	assert.True(t, resp.OK)
	assert.Equal(t, "pong", resp.Result)
	assert.Empty(t, resp.Error)
}

func TestSendAutoConnects(t *testing.T) {
	srv := startMock(t)

	conn := New(testConfig(srv.Port()))
	defer conn.Disconnect()

	resp := conn.Send("spawn_actor", map[string]any{"name": "Cube"})
	require.True(t, resp.OK)
	assert.Equal(t, "Mock response for spawn_actor", resp.Result)

	received := srv.ReceivedCommands()
	require.Len(t, received, 1)
	assert.Equal(t, map[string]any{"name": "Cube"}, received[0].Params)
}

func TestSendSequenceRedialsPerCommand(t *testing.T) {
	// The bridge serves one command per connection; consecutive sends on
	// one Connection must dial again transparently.
	srv := startMock(t)

	conn := New(testConfig(srv.Port()))
	defer conn.Disconnect()

	for i := 0; i < 3; i++ {
		resp := conn.Send("ping", nil)
		require.True(t, resp.OK, "send %d failed: %s", i, resp.Error)
	}
	assert.Len(t, srv.ReceivedCommands(), 3)
	assert.Equal(t, 3, srv.TotalConnections())
	assert.Equal(t, 0, conn.Retries())
}

func TestSendReassemblesChunkedResponse(t *testing.T) {
	// The wire has no framing; a reply dribbled out one byte at a time
	// must parse identically to a single write.
	payload, err := json.Marshal(map[string]any{
		"status": "success",
		"result": map[string]any{"actors": []string{"Floor", "PlayerStart", "SkyLight"}},
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		if _, err := protocol.ReadFrame(c); err != nil {
			return
		}
		for _, b := range payload {
			c.Write([]byte{b})
			time.Sleep(time.Millisecond)
		}
	}()

	conn := New(testConfig(ln.Addr().(*net.TCPAddr).Port))
	defer conn.Disconnect()

	resp := conn.Send("get_actors_in_level", nil)
	require.True(t, resp.OK, "error: %s", resp.Error)
	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"Floor", "PlayerStart", "SkyLight"}, result["actors"])
}

func TestConnectRetryBound(t *testing.T) {
	port := closedPort(t)

	tests := []struct {
		name         string
		retry        bool
		maxRetries   int
		wantAttempts int
	}{
		{name: "no retry means one attempt", retry: false, maxRetries: 3, wantAttempts: 1},
		{name: "three retries means three attempts", retry: true, maxRetries: 3, wantAttempts: 3},
		{name: "one retry means one attempt", retry: true, maxRetries: 1, wantAttempts: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(port)
			cfg.RetryOnFailure = tt.retry
			cfg.MaxRetries = tt.maxRetries
			cfg.RetryDelay = 10 * time.Millisecond

			conn := New(cfg)
			err := conn.Connect()
			require.Error(t, err)
			assert.Equal(t, tt.wantAttempts, conn.Attempts())
		})
	}
}

func TestSendTimesOutOnSilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		// Read the request, then say nothing until the client gives up.
		protocol.ReadFrame(c)
		time.Sleep(time.Second)
		c.Close()
	}()

	cfg := testConfig(ln.Addr().(*net.TCPAddr).Port)
	cfg.CommandTimeout = 150 * time.Millisecond
	conn := New(cfg)
	defer conn.Disconnect()

	start := time.Now()
	resp := conn.Send("slow_command", nil)
	elapsed := time.Since(start)

	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "timeout")
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestSendConnectFailureBecomesEnvelope(t *testing.T) {
	conn := New(testConfig(closedPort(t)))
	resp := conn.Send("ping", nil)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "connect")
}

func TestSendNeverResends(t *testing.T) {
	// At-most-once: a command whose reply is lost must not be replayed.
	var frames atomic.Int32
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				if _, err := protocol.ReadFrame(c); err == nil {
					frames.Add(1)
				}
			}(c)
		}
	}()

	conn := New(testConfig(ln.Addr().(*net.TCPAddr).Port))
	defer conn.Disconnect()

	resp := conn.Send("delete_actor", map[string]any{"name": "Cube"})
	assert.False(t, resp.OK)

	// Give the server a moment to observe any (incorrect) resend.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), frames.Load())
}

func TestDisconnectIdempotent(t *testing.T) {
	conn := New(testConfig(closedPort(t)))
	conn.Disconnect()
	conn.Disconnect()

	srv := startMock(t)
	conn = New(testConfig(srv.Port()))
	require.NoError(t, conn.Connect())
	conn.Disconnect()
	conn.Disconnect()
}

func TestDisconnectUnblocksPendingSend(t *testing.T) {
	// Tearing the socket down from another goroutine frees a Send that
	// is stuck waiting on a reply that will never come.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		protocol.ReadFrame(c)
		time.Sleep(5 * time.Second)
		c.Close()
	}()

	cfg := testConfig(ln.Addr().(*net.TCPAddr).Port)
	cfg.CommandTimeout = 10 * time.Second
	conn := New(cfg)
	require.NoError(t, conn.Connect())

	done := make(chan protocol.Response, 1)
	go func() {
		done <- conn.Send("stuck_command", nil)
	}()
	time.Sleep(50 * time.Millisecond)
	conn.Disconnect()

	select {
	case resp := <-done:
		assert.False(t, resp.OK)
		assert.NotEmpty(t, resp.Error)
	case <-time.After(2 * time.Second):
		t.Fatal("Send did not return after Disconnect")
	}
}
