package web

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/solace-ai/go-concierge/pkg/assistant"
)

// StreamClient consumes a bridge server's websocket event streams from
// another process (the demo binary's console view, smoke tooling).
type StreamClient struct {
	baseURL string

	wsMu sync.Mutex
	ws   *websocket.Conn

	// Callbacks, set before Connect.
	OnMessage func(assistant.Message)
	OnState   func(StateEvent)
	OnError   func(error)

	closed bool
}

// NewStreamClient creates a client for a bridge at baseURL
// (e.g. "ws://localhost:7078").
func NewStreamClient(baseURL string) *StreamClient {
	return &StreamClient{baseURL: baseURL}
}

// ConnectMessages attaches to the message stream and dispatches events
// until the connection drops or Close is called.
func (c *StreamClient) ConnectMessages() error {
	return c.consume("/ws/messages", func(data []byte) {
		var msg assistant.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.fail(fmt.Errorf("decode message event: %w", err))
			return
		}
		if c.OnMessage != nil {
			c.OnMessage(msg)
		}
	})
}

// ConnectState attaches to the state stream.
func (c *StreamClient) ConnectState() error {
	return c.consume("/ws/state", func(data []byte) {
		var ev StateEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.fail(fmt.Errorf("decode state event: %w", err))
			return
		}
		if c.OnState != nil {
			c.OnState(ev)
		}
	})
}

// Close tears the connection down.
func (c *StreamClient) Close() error {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	c.closed = true
	if c.ws != nil {
		return c.ws.Close()
	}
	return nil
}

func (c *StreamClient) consume(path string, dispatch func([]byte)) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	ws, _, err := dialer.Dial(c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("dial bridge %s: %w", path, err)
	}

	c.wsMu.Lock()
	if c.closed {
		c.wsMu.Unlock()
		ws.Close()
		return nil
	}
	c.ws = ws
	c.wsMu.Unlock()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.wsMu.Lock()
			closed := c.closed
			c.wsMu.Unlock()
			if closed {
				return nil
			}
			return fmt.Errorf("bridge stream %s: %w", path, err)
		}
		dispatch(data)
	}
}

func (c *StreamClient) fail(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}
