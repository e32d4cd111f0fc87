package socketrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/decodeproject/decode/internal/model"
)

const defaultCallTimeout = 30 * time.Second

// ErrEmptyTotal is returned when the issuer answers GetStats without a total.
var ErrEmptyTotal = errors.New("socketrpc: stats reply has empty total")

// Client implements model.StatsClient over a Unix domain socket using JSON-RPC 2.0.
// A call that fails on the transport drops the connection; the next call redials.
type Client struct {
	path    string
	mu      sync.Mutex
	conn    net.Conn
	nextID  int
	scanner *bufio.Scanner
	encoder *json.Encoder
	closed  bool
}

// Dial connects to the socket RPC server at the given path.
func Dial(socketPath string) (*Client, error) {
	c := &Client{path: socketPath}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	conn, err := net.DialTimeout("unix", c.path, 5*time.Second)
	if err != nil {
		return fmt.Errorf("socketrpc: dial: %w", err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	c.conn = conn
	c.scanner = scanner
	c.encoder = json.NewEncoder(conn)
	return nil
}

// reset discards the connection along with any reply still in flight on it.
func (c *Client) reset() {
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn, c.scanner, c.encoder = nil, nil, nil
}

// Close closes the underlying connection. Later calls fail.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.scanner, c.encoder = nil, nil, nil
	return err
}

// call performs a JSON-RPC call and unmarshals the result into dest.
// The connection deadline follows ctx, capped at defaultCallTimeout.
func (c *Client) call(ctx context.Context, method string, params interface{}, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("socketrpc: %s: %w", method, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("socketrpc: %s: %w", method, net.ErrClosed)
	}
	if c.conn == nil {
		if err := c.connect(); err != nil {
			return err
		}
	}

	c.nextID++
	id := c.nextID

	paramsData, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("socketrpc: marshal params: %w", err)
	}

	req := Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}

	deadline := time.Now().Add(defaultCallTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.conn.SetDeadline(deadline)

	if err := c.encoder.Encode(req); err != nil {
		c.reset()
		return fmt.Errorf("socketrpc: send: %w", err)
	}

	if !c.scanner.Scan() {
		err := c.scanner.Err()
		c.reset()
		if err != nil {
			return fmt.Errorf("socketrpc: read: %w", err)
		}
		return fmt.Errorf("socketrpc: connection closed")
	}
	c.conn.SetDeadline(time.Time{})

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		c.reset()
		return fmt.Errorf("socketrpc: unmarshal response: %w", err)
	}
	if resp.ID != id && resp.Error == nil {
		c.reset()
		return fmt.Errorf("socketrpc: response id %d does not match request %d", resp.ID, id)
	}

	if resp.Error != nil {
		return resp.Error
	}

	if dest != nil {
		if err := json.Unmarshal(resp.Result, dest); err != nil {
			return fmt.Errorf("socketrpc: unmarshal result: %w", err)
		}
	}
	return nil
}

// GetStats implements model.StatsClient.
func (c *Client) GetStats(ctx context.Context) (model.Stats, error) {
	var result model.Stats
	if err := c.call(ctx, "GetStats", map[string]interface{}{}, &result); err != nil {
		return model.Stats{}, err
	}
	if result.Total == "" {
		return model.Stats{}, ErrEmptyTotal
	}
	return result, nil
}

func (c *Client) IssuedByAttribute(ctx context.Context) ([]model.AttributeCount, error) {
	var result []model.AttributeCount
	err := c.call(ctx, "IssuedByAttribute", map[string]interface{}{}, &result)
	return result, err
}

func (c *Client) RecordIssuance(ctx context.Context, attributeID string) (model.Credential, error) {
	var result model.Credential
	err := c.call(ctx, "RecordIssuance", map[string]interface{}{"AttributeID": attributeID}, &result)
	return result, err
}
