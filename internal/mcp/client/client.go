// Package client implements the MCP client used to reach the remote tool
// server over a stdio subprocess.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"wisp/internal/mcp/protocol"
	"wisp/internal/mcp/transport"
	"wisp/pkg/logger"
)

// ConnectionState represents the state of the client connection.
type ConnectionState int

const (
	// StateDisconnected means the client is not connected.
	StateDisconnected ConnectionState = iota
	// StateConnecting means the client is in the process of connecting.
	StateConnecting
	// StateConnected means the client is connected and ready.
	StateConnected
	// StateError means the client encountered an error.
	StateError
)

// String returns a string representation of the connection state.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Config holds configuration for an MCP client.
type Config struct {
	// Command is the server command to spawn.
	Command string
	// Args are the arguments for the command.
	Args []string
	// Env are extra environment variables for the subprocess.
	Env map[string]string
	// WorkDir is the working directory for the subprocess.
	WorkDir string

	// Timeout bounds each request/response exchange.
	Timeout time.Duration
}

// Client is an MCP client that connects to a tool server subprocess.
type Client struct {
	name   string
	config Config

	transport  transport.Transport
	serverInfo protocol.ServerInfo
	tools      []protocol.Tool

	pending   map[int64]chan *protocol.Response
	pendingMu sync.Mutex
	nextID    int64

	state   ConnectionState
	stateMu sync.RWMutex
	lastErr error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new MCP client.
func New(name string, config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{
		name:    name,
		config:  config,
		pending: make(map[int64]chan *protocol.Response),
		state:   StateDisconnected,
	}
}

// Name returns the client name.
func (c *Client) Name() string {
	return c.name
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// LastError returns the last error encountered.
func (c *Client) LastError() error {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.lastErr
}

// ServerInfo returns the server info from the initialize response.
func (c *Client) ServerInfo() protocol.ServerInfo {
	return c.serverInfo
}

// ListTools returns the tool list cached at connect time.
func (c *Client) ListTools() []protocol.Tool {
	return c.tools
}

func (c *Client) setState(state ConnectionState, err error) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.state = state
	c.lastErr = err
}

// Connect spawns the server subprocess and performs the MCP handshake.
func (c *Client) Connect(ctx context.Context) error {
	t := transport.NewStdio(
		c.config.Command,
		c.config.Args,
		transport.WithEnv(c.config.Env),
		transport.WithWorkDir(c.config.WorkDir),
	)
	if err := t.Start(); err != nil {
		c.setState(StateError, err)
		return fmt.Errorf("start transport: %w", err)
	}
	return c.connectWith(ctx, t)
}

// connectWith runs the handshake over an already started transport.
func (c *Client) connectWith(ctx context.Context, t transport.Transport) error {
	c.setState(StateConnecting, nil)

	c.transport = t
	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.wg.Add(1)
	go c.receiveLoop()

	if err := c.initialize(ctx); err != nil {
		c.Close()
		c.setState(StateError, err)
		return fmt.Errorf("initialize: %w", err)
	}

	if err := c.refreshTools(ctx); err != nil {
		c.Close()
		c.setState(StateError, err)
		return fmt.Errorf("list tools: %w", err)
	}

	logger.Info().
		Str("server", c.serverInfo.Name).
		Str("version", c.serverInfo.Version).
		Int("tools", len(c.tools)).
		Msg("mcp server connected")

	c.setState(StateConnected, nil)
	return nil
}

// initialize performs the MCP initialization handshake.
func (c *Client) initialize(ctx context.Context) error {
	params := protocol.InitializeParams{
		ProtocolVersion: protocol.ProtocolVersion,
		ClientInfo: protocol.ClientInfo{
			Name:    c.name,
			Version: "1.0.0",
		},
		Capabilities: protocol.Capabilities{},
	}

	var result protocol.InitializeResult
	if err := c.call(ctx, protocol.MethodInitialize, params, &result); err != nil {
		return err
	}

	c.serverInfo = result.ServerInfo

	notif, err := protocol.NewNotification(protocol.MethodInitialized, nil)
	if err != nil {
		return fmt.Errorf("create initialized notification: %w", err)
	}
	data, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("marshal initialized notification: %w", err)
	}
	if err := c.transport.Send(ctx, data); err != nil {
		return fmt.Errorf("send initialized notification: %w", err)
	}

	return nil
}

// refreshTools retrieves the list of available tools from the server.
func (c *Client) refreshTools(ctx context.Context) error {
	var result protocol.ListToolsResult
	if err := c.call(ctx, protocol.MethodToolsList, nil, &result); err != nil {
		return err
	}
	c.tools = result.Tools
	return nil
}

// CallTool calls a tool on the remote MCP server.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*protocol.CallToolResult, error) {
	params := protocol.CallToolParams{
		Name:      name,
		Arguments: args,
	}

	var result protocol.CallToolResult
	if err := c.call(ctx, protocol.MethodToolsCall, params, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Ping checks that the server is still responding.
func (c *Client) Ping(ctx context.Context) error {
	var result protocol.PingResult
	return c.call(ctx, protocol.MethodPing, protocol.PingParams{}, &result)
}

// call sends a request and waits for the matching response.
func (c *Client) call(ctx context.Context, method string, params, result any) error {
	id := atomic.AddInt64(&c.nextID, 1)

	req, err := protocol.NewRequestWithID(id, method, params)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	respCh := make(chan *protocol.Response, 1)

	c.pendingMu.Lock()
	c.pending[id] = respCh
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	if err := c.transport.Send(ctx, data); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.config.Timeout):
		return errors.New("request timeout")
	case resp := <-respCh:
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && resp.Result != nil {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}
		return nil
	}
}

// receiveLoop reads messages from the transport and dispatches responses.
func (c *Client) receiveLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		data, err := c.transport.Receive(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			logger.Debug().Err(err).Str("client", c.name).Msg("mcp receive failed")
			continue
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			logger.Debug().Err(err).Str("client", c.name).Msg("unparseable mcp message")
			continue
		}

		// Requests and notifications from the server are not handled yet.
		if msg.IsResponse() {
			c.handleResponse(msg)
		}
	}
}

// handleResponse dispatches a response to the waiting caller.
func (c *Client) handleResponse(msg *protocol.Message) {
	id := protocol.GetRequestID(msg.ID)
	if id == 0 {
		return
	}

	c.pendingMu.Lock()
	ch, ok := c.pending[id]
	c.pendingMu.Unlock()

	if ok {
		select {
		case ch <- msg.ToResponse():
		default:
			// Caller already gone, drop the response.
		}
	}
}

// IsConnected returns true if the client is currently connected.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Close closes the client connection.
func (c *Client) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	var err error
	if c.transport != nil {
		err = c.transport.Close()
	}

	c.setState(StateDisconnected, nil)
	return err
}
