// internal/control/client.go
package control

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrClientBufferFull signals a slow consumer whose send queue is full.
var ErrClientBufferFull = errors.New("client send buffer full")

// Client is a single control connection.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	mu   sync.Mutex
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		Conn: conn,
		Send: make(chan []byte, 256),
	}
}

// SendMessage queues a message for delivery. It never blocks; a full
// queue drops the message and reports ErrClientBufferFull.
func (c *Client) SendMessage(msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
		return nil
	default:
		return ErrClientBufferFull
	}
}

// SendEvent pushes an engine event to the client.
func (c *Client) SendEvent(eventType string, payload interface{}) error {
	return c.SendMessage(&Message{
		Kind: "event",
		Event: &Event{
			Type:    eventType,
			Payload: payload,
		},
	})
}

// SendResponse answers an RPC request.
func (c *Client) SendResponse(id string, result interface{}, errMsg string) error {
	resp := &RPCResponse{ID: id}
	if errMsg != "" {
		resp.Error = errMsg
	} else {
		resp.Result = result
	}
	return c.SendMessage(&Message{
		Kind:     "rpc_response",
		Response: resp,
	})
}

// WritePump drains the Send queue onto the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// Close stops the write pump.
func (c *Client) Close() {
	close(c.Send)
}
