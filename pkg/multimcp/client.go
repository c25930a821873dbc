package multimcp

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Status represents the lifecycle of a managed connection.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// Client maintains MCP sessions to a set of configured servers and
// aggregates tool listings across them. Sessions are dialed lazily on first
// use and cached until they close or Disconnect is called.
type Client struct {
	mu sync.RWMutex

	options Options
	states  map[string]*serverState
}

type serverState struct {
	config  ServerConfig
	timeout time.Duration

	session *mcp.ClientSession

	connecting bool
	connectCh  chan struct{}
}

// New constructs a Client from server configurations keyed by ID. Pass nil
// options for defaults.
func New(cfg map[string]ServerConfig, opts *Options) *Client {
	options := opts.normalized()
	if options.ClientVersion == "" {
		options.ClientVersion = "1.0.0"
	}
	if options.DefaultTimeout <= 0 {
		options.DefaultTimeout = 30 * time.Second
	}
	c := &Client{
		options: options,
		states:  make(map[string]*serverState),
	}
	for id, sc := range cfg {
		c.states[id] = &serverState{config: sc}
	}
	return c
}

// Servers returns the known server IDs in sorted order.
func (c *Client) Servers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.states))
	for id := range c.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasServer reports whether a server ID is known.
func (c *Client) HasServer(serverID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.states[serverID]
	return ok
}

// Config returns the configuration registered for a server, or nil.
func (c *Client) Config(serverID string) ServerConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if st, ok := c.states[serverID]; ok {
		return st.config
	}
	return nil
}

// Connect establishes (or reuses) a session for the given server. Concurrent
// callers for the same server share a single dial attempt.
func (c *Client) Connect(ctx context.Context, serverID string) (*mcp.ClientSession, error) {
	for {
		c.mu.Lock()
		state, ok := c.states[serverID]
		if !ok {
			c.mu.Unlock()
			return nil, errors.Newf("multimcp: unknown server %q", serverID)
		}
		if state.session != nil {
			session := state.session
			c.mu.Unlock()
			return session, nil
		}
		if state.connecting {
			ch := state.connectCh
			c.mu.Unlock()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-ch:
				continue
			}
		}
		state.connecting = true
		state.connectCh = make(chan struct{})
		timeout := state.config.base().Timeout
		if timeout <= 0 {
			timeout = c.options.DefaultTimeout
		}
		state.timeout = timeout
		c.mu.Unlock()

		session, err := c.establishSession(ctx, serverID, state)
		c.mu.Lock()
		state.connecting = false
		close(state.connectCh)
		if err != nil {
			c.mu.Unlock()
			return nil, err
		}
		state.session = session
		c.mu.Unlock()
		return session, nil
	}
}

func (c *Client) establishSession(ctx context.Context, serverID string, state *serverState) (*mcp.ClientSession, error) {
	base := state.config.base()
	impl := &mcp.Implementation{
		Name:    c.clientName(serverID),
		Version: c.clientVersion(base),
	}
	logRPC := base.LogRPC || c.options.LogRPC

	attempt := func(ctx context.Context, transport mcp.Transport) (*mcp.ClientSession, error) {
		client := mcp.NewClient(impl, nil)
		wrapped := transport
		if logRPC {
			wrapped = &rpcLogTransport{serverID: serverID, delegate: transport, logger: c.logger()}
		}
		return client.Connect(ctx, wrapped, nil)
	}

	connectCtx := ctx
	if state.timeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, state.timeout)
		defer cancel()
	}

	switch cfg := state.config.(type) {
	case *StdioConfig:
		transport, err := buildStdioTransport(serverID, cfg)
		if err != nil {
			return nil, err
		}
		session, err := attempt(connectCtx, transport)
		if err != nil {
			return nil, err
		}
		go c.monitorSession(serverID, session, base)
		return session, nil
	case *HTTPConfig:
		return c.establishHTTPSession(connectCtx, serverID, base, cfg, attempt)
	default:
		return nil, errors.Newf("multimcp: unsupported config for %q", serverID)
	}
}

func (c *Client) establishHTTPSession(
	ctx context.Context,
	serverID string,
	base *BaseConfig,
	cfg *HTTPConfig,
	attempt func(context.Context, mcp.Transport) (*mcp.ClientSession, error),
) (*mcp.ClientSession, error) {
	if cfg.Endpoint == "" {
		return nil, errors.Newf("multimcp: endpoint missing for %q", serverID)
	}
	httpClient := decorateHTTPClient(cfg.HTTPClient, cfg.Headers)

	streamable := &mcp.StreamableClientTransport{
		Endpoint:   cfg.Endpoint,
		HTTPClient: httpClient,
		MaxRetries: cfg.MaxRetries,
	}
	sse := &mcp.SSEClientTransport{Endpoint: cfg.Endpoint, HTTPClient: httpClient}

	var streamErr error
	if !preferSSE(cfg) {
		session, err := attempt(ctx, streamable)
		if err == nil {
			go c.monitorSession(serverID, session, base)
			return session, nil
		}
		streamErr = err
	}
	session, err := attempt(ctx, sse)
	if err != nil {
		if streamErr != nil {
			return nil, errors.Wrapf(err, "sse fallback after streamable error: %v", streamErr)
		}
		return nil, err
	}
	go c.monitorSession(serverID, session, base)
	return session, nil
}

func buildStdioTransport(serverID string, cfg *StdioConfig) (mcp.Transport, error) {
	if cfg.Command == "" {
		return nil, errors.Newf("multimcp: command missing for %q", serverID)
	}
	cmd := exec.Command(cfg.Command, cfg.Args...)
	if len(cfg.Env) > 0 {
		env := os.Environ()
		for k, v := range cfg.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}
	return &mcp.CommandTransport{Command: cmd}, nil
}

func preferSSE(cfg *HTTPConfig) bool {
	if cfg.PreferSSE != nil {
		return *cfg.PreferSSE
	}
	return strings.HasSuffix(strings.TrimSpace(cfg.Endpoint), "/sse")
}

func (c *Client) monitorSession(serverID string, session *mcp.ClientSession, base *BaseConfig) {
	if err := session.Wait(); err != nil {
		if base.OnError != nil {
			base.OnError(err)
		}
		c.logger().Debug("session terminated", "server", serverID, "error", err)
	}
	c.mu.Lock()
	if st, ok := c.states[serverID]; ok && st.session == session {
		st.session = nil
	}
	c.mu.Unlock()
}

// ListTools lists the tools of one server, dialing it first if needed.
// Servers that do not implement tools/list are reported as having no tools
// rather than as failing.
func (c *Client) ListTools(ctx context.Context, serverID string, params *mcp.ListToolsParams) (*mcp.ListToolsResult, error) {
	session, timeout, err := c.ensureSession(ctx, serverID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	res, err := session.ListTools(ctx, params)
	if err != nil {
		if isMethodUnavailable(err) {
			return &mcp.ListToolsResult{Tools: []*mcp.Tool{}}, nil
		}
		return nil, errors.Wrapf(err, "listing tools on %q", serverID)
	}
	return res, nil
}

// GetTools aggregates tool lists across the given server IDs, defaulting to
// every configured server. Servers are queried sequentially; a failure on
// any server fails the whole call.
func (c *Client) GetTools(ctx context.Context, serverIDs ...string) ([]*mcp.Tool, error) {
	ids := serverIDs
	if len(ids) == 0 {
		ids = c.Servers()
	}
	var all []*mcp.Tool
	for _, id := range ids {
		res, err := c.ListTools(ctx, id, nil)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Tools...)
	}
	return all, nil
}

// Ping sends a protocol-level ping, dialing the server first if needed.
func (c *Client) Ping(ctx context.Context, serverID string) error {
	session, timeout, err := c.ensureSession(ctx, serverID)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	return session.Ping(ctx, nil)
}

// ConnectionStatus probes the session for a server with a short ping.
func (c *Client) ConnectionStatus(ctx context.Context, serverID string) Status {
	c.mu.RLock()
	state, ok := c.states[serverID]
	if !ok {
		c.mu.RUnlock()
		return StatusDisconnected
	}
	if state.connecting {
		c.mu.RUnlock()
		return StatusConnecting
	}
	session := state.session
	c.mu.RUnlock()
	if session == nil {
		return StatusDisconnected
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := session.Ping(ctx, nil); err != nil {
		return StatusDisconnected
	}
	return StatusConnected
}

// Disconnect closes the session for the given server, if any.
func (c *Client) Disconnect(ctx context.Context, serverID string) error {
	c.mu.Lock()
	state, ok := c.states[serverID]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	session := state.session
	c.mu.Unlock()
	if session == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan struct{})
	var closeErr error
	go func() {
		closeErr = session.Close()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return closeErr
	}
}

// DisconnectAll closes every open session.
func (c *Client) DisconnectAll(ctx context.Context) error {
	var errs []error
	for _, id := range c.Servers() {
		if err := c.Disconnect(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Client) ensureSession(ctx context.Context, serverID string) (*mcp.ClientSession, time.Duration, error) {
	for {
		c.mu.RLock()
		state, ok := c.states[serverID]
		if !ok {
			c.mu.RUnlock()
			return nil, 0, errors.Newf("multimcp: unknown server %q", serverID)
		}
		if state.session != nil {
			session := state.session
			timeout := state.timeout
			c.mu.RUnlock()
			return session, timeout, nil
		}
		connecting := state.connecting
		connectCh := state.connectCh
		c.mu.RUnlock()
		if !connecting {
			if _, err := c.Connect(ctx, serverID); err != nil {
				return nil, 0, err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-connectCh:
		}
	}
}

func (c *Client) logger() *slog.Logger {
	if c.options.Logger != nil {
		return c.options.Logger
	}
	return slog.Default()
}

func (c *Client) clientName(serverID string) string {
	if c.options.ClientName != "" {
		return c.options.ClientName
	}
	return serverID
}

func (c *Client) clientVersion(base *BaseConfig) string {
	if base.Version != "" {
		return base.Version
	}
	return c.options.ClientVersion
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// decorateHTTPClient clones the base client so extra headers ride along on
// every request without touching the caller's client.
func decorateHTTPClient(base *http.Client, headers http.Header) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	if len(headers) == 0 {
		return base
	}
	clone := *base
	next := base.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	clone.Transport = &headerRoundTripper{next: next, headers: headers.Clone()}
	return &clone
}

type headerRoundTripper struct {
	next    http.RoundTripper
	headers http.Header
}

func (rt *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	for k, values := range rt.headers {
		req.Header.Del(k)
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	return rt.next.RoundTrip(req)
}

// isMethodUnavailable sniffs "method not found" style errors so servers
// without a capability read as empty rather than broken.
func isMethodUnavailable(err error) bool {
	if err == nil {
		return false
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "method not found") ||
		strings.Contains(lower, "not implemented") ||
		strings.Contains(lower, "unsupported") ||
		strings.Contains(lower, "does not support") ||
		strings.Contains(lower, "unimplemented")
}
