// Package client provides WebSocket client functionality for Supabase Realtime
package client

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client represents a WebSocket client connection to Supabase Realtime
type Client struct {
	apiKey   string
	endpoint string
	Conn     *websocket.Conn // Public connection instance for external use
}

// New creates a new WebSocket client with the specified endpoint and API key
func New(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		Conn:     nil,
	}
}

// Connect establishes a WebSocket connection to the Supabase Realtime server
// It configures the connection with the necessary headers and authentication
func (c *Client) Connect() error {
	header := http.Header{}
	header.Add("Authorization", "Bearer "+c.apiKey)

	dialer := websocket.Dialer{
		EnableCompression: true,
	}

	conn, resp, err := dialer.Dial(c.endpoint+"?apikey="+c.apiKey, header)
	if err != nil {
		if resp != nil {
			logrus.WithFields(logrus.Fields{
				"status":  resp.Status,
				"headers": resp.Header,
			}).Error("realtime handshake rejected")
		}
		return fmt.Errorf("failed to connect to realtime server: %w", err)
	}
	c.Conn = conn

	logrus.Info("connected to Supabase Realtime")
	return nil
}

// Close terminates the WebSocket connection
func (c *Client) Close() error {
	if c.Conn == nil {
		return nil
	}
	return c.Conn.Close()
}
