package multimcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// rpcLogTransport wraps a transport and emits every JSON-RPC message to the
// structured logger at debug level.
type rpcLogTransport struct {
	serverID string
	delegate mcp.Transport
	logger   *slog.Logger
}

func (t *rpcLogTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	conn, err := t.delegate.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &rpcLogConnection{serverID: t.serverID, delegate: conn, logger: t.logger}, nil
}

type rpcLogConnection struct {
	serverID string
	delegate mcp.Connection
	logger   *slog.Logger
	mu       sync.Mutex
}

func (c *rpcLogConnection) SessionID() string { return c.delegate.SessionID() }

func (c *rpcLogConnection) Read(ctx context.Context) (jsonrpc.Message, error) {
	msg, err := c.delegate.Read(ctx)
	if err == nil {
		c.emit("receive", msg)
	}
	return msg, err
}

func (c *rpcLogConnection) Write(ctx context.Context, msg jsonrpc.Message) error {
	if err := c.delegate.Write(ctx, msg); err != nil {
		return err
	}
	c.emit("send", msg)
	return nil
}

func (c *rpcLogConnection) Close() error { return c.delegate.Close() }

func (c *rpcLogConnection) emit(direction string, msg jsonrpc.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	encoded, err := json.Marshal(msg)
	if err != nil {
		encoded = []byte(err.Error())
	}
	c.logger.Debug("jsonrpc", "server", c.serverID, "direction", direction, "message", string(encoded))
}
