// Package transport implements the duplex socket between the host and the
// probe (spec §4.1): a single websocket connection per session, framed per
// RFC 6455, carrying UTF-8 JSON text frames of the wire schema in
// internal/wire. Binary frames are reserved and dropped with no error.
//
// Framing (fragmentation reassembly, masking, ping/pong, close codes) is
// delegated to gorilla/websocket — the same library the teacher framework
// uses for its own duplex connection — rather than re-derived by hand; see
// handshake.go for the one piece (the RFC 6455 accept-key computation)
// kept as an independently testable reference implementation.
package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/reactcheck/reactcheck/internal/wire"
)

// Config holds the transport-level timeouts and limits from spec §5 and
// §4.1.
type Config struct {
	// HandshakeTimeout bounds how long the initial upgrade may take.
	// Default: 10s.
	HandshakeTimeout time.Duration

	// IdleTimeout is how long the connection may go without any frame
	// before the host sends a ping.
	// Default: 60s.
	IdleTimeout time.Duration

	// PongTimeout is how long the host waits for a pong after sending a
	// ping before closing with code 1001.
	// Default: 15s.
	PongTimeout time.Duration

	// WriteTimeout bounds individual write calls.
	// Default: 10s.
	WriteTimeout time.Duration

	// MaxMessageSize bounds the receive buffer; frames declaring a
	// larger length are rejected with close code 1009.
	// Default: 16 MiB.
	MaxMessageSize int64

	// Logger receives connection lifecycle and frame-level events. Nil
	// defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultConfig returns the spec's documented transport defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		IdleTimeout:      60 * time.Second,
		PongTimeout:      15 * time.Second,
		WriteTimeout:     10 * time.Second,
		MaxMessageSize:   16 << 20,
	}
}

// ErrPongTimeout is returned by ReadLoop when the peer does not respond to
// a ping within Config.PongTimeout.
var ErrPongTimeout = errors.New("transport: pong timeout")

// Conn is one accepted probe connection.
type Conn struct {
	ws     *websocket.Conn
	cfg    Config
	logger *slog.Logger
}

// Accept performs the capability handshake (an HTTP upgrade, whose
// Sec-WebSocket-Accept value gorilla/websocket's Upgrader computes with the
// same formula as handshake.go's AcceptKey) and returns the
// resulting connection. Only one probe connects per session; a second
// concurrent Accept on the same session is a caller error.
func Accept(w http.ResponseWriter, r *http.Request, cfg Config) (*Conn, error) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout: cfg.HandshakeTimeout,
		CheckOrigin:      func(r *http.Request) bool { return true },
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: upgrade: %w", err)
	}
	ws.SetReadLimit(cfg.MaxMessageSize)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "transport", "remote_addr", ws.RemoteAddr().String())
	logger.Debug("probe connected")
	return &Conn{ws: ws, cfg: cfg, logger: logger}, nil
}

// ReadLoop blocks, dispatching decoded inbound messages to onInbound and
// binary frames to onBinary (may be nil; binary frames are otherwise
// silently dropped), until the connection closes or a fatal error occurs.
// Malformed JSON text frames are reported via onMalformed and do not end
// the loop, per spec §4.1's failure semantics.
func (c *Conn) ReadLoop(onInbound func(wire.Inbound), onMalformed func(), onBinary func([]byte)) error {
	awaitingPong := false

	c.ws.SetPongHandler(func(string) error {
		awaitingPong = false
		c.ws.SetReadDeadline(time.Now().Add(c.cfg.IdleTimeout))
		return nil
	})
	c.ws.SetReadDeadline(time.Now().Add(c.cfg.IdleTimeout))

	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if awaitingPong {
					c.logger.Warn("pong timeout, closing connection")
					c.ws.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "pong timeout"),
						time.Now().Add(c.cfg.WriteTimeout))
					return ErrPongTimeout
				}
				awaitingPong = true
				if werr := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteTimeout)); werr != nil {
					return werr
				}
				c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
				continue
			}
			return err
		}

		awaitingPong = false
		c.ws.SetReadDeadline(time.Now().Add(c.cfg.IdleTimeout))

		switch mt {
		case websocket.TextMessage:
			msg, derr := wire.Decode(data)
			if derr != nil {
				c.logger.Error("frame decode error", "error", derr)
				onMalformed()
				continue
			}
			onInbound(msg)
		case websocket.BinaryMessage:
			c.logger.Debug("binary frame dropped", "bytes", len(data))
			if onBinary != nil {
				onBinary(data)
			}
		}
	}
}

// WriteText sends a raw JSON text frame, e.g. the encoded output of
// internal/wire's Encode* functions.
func (c *Conn) WriteText(payload []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

// Close sends a close frame with the given code and message, then closes
// the underlying stream.
func (c *Conn) Close(code int, message string) error {
	c.logger.Debug("closing connection", "code", code, "message", message)
	c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, message),
		time.Now().Add(c.cfg.WriteTimeout))
	return c.ws.Close()
}

// Close codes used across the host, per spec §4.1 and §5.
const (
	CloseNormal       = websocket.CloseNormalClosure // 1000
	CloseGoingAway    = websocket.CloseGoingAway      // 1001, also used for idempotent `stop`
	CloseProtocolErr  = websocket.CloseProtocolError  // 1002
	CloseMessageTooBig = websocket.CloseMessageTooBig // 1009
)
