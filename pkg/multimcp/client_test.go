package multimcp

import (
	"context"
	"io"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestClientInitialServers(t *testing.T) {
	t.Parallel()

	stdioID := "stdio-example"
	httpID := "http-example"

	cfg := map[string]ServerConfig{
		stdioID: &StdioConfig{
			BaseConfig: BaseConfig{Timeout: 5 * time.Second},
			Command:    "python",
			Args:       []string{"tools/mcp_servers/rag.py"},
		},
		httpID: &HTTPConfig{
			BaseConfig: BaseConfig{Timeout: 5 * time.Second},
			Endpoint:   "http://host:9000/mcp",
		},
	}

	client := New(cfg, &Options{ClientName: "multimcp-tests"})

	servers := client.Servers()
	expected := []string{httpID, stdioID}
	if !reflect.DeepEqual(servers, expected) {
		t.Fatalf("Servers() = %v, expected %v", servers, expected)
	}
	if !client.HasServer(stdioID) || !client.HasServer(httpID) {
		t.Fatalf("client should know both configured servers")
	}

	stdioCfg, ok := AsStdio(client.Config(stdioID))
	if !ok {
		t.Fatalf("expected stdio config for %s", stdioID)
	}
	if stdioCfg.Command != "python" || len(stdioCfg.Args) != 1 {
		t.Fatalf("stdio config not preserved: %#v", stdioCfg)
	}

	httpCfg, ok := AsHTTP(client.Config(httpID))
	if !ok {
		t.Fatalf("expected http config for %s", httpID)
	}
	if httpCfg.Endpoint != "http://host:9000/mcp" {
		t.Fatalf("http endpoint mismatch: %s", httpCfg.Endpoint)
	}

	for _, id := range servers {
		if status := client.ConnectionStatus(context.Background(), id); status != StatusDisconnected {
			t.Fatalf("expected disconnected status for %s, got %s", id, status)
		}
	}
}

func TestConnectUnknownServer(t *testing.T) {
	t.Parallel()

	client := New(nil, nil)
	if _, err := client.Connect(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for unknown server")
	}
	if _, err := client.GetTools(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for unknown server in GetTools")
	}
}

func TestBuildStdioTransport(t *testing.T) {
	t.Parallel()

	cfg := &StdioConfig{
		BaseConfig: BaseConfig{Timeout: 5 * time.Second},
		Command:    "python",
		Args:       []string{"tools/mcp_servers/weather_test.py"},
		Env:        map[string]string{"MCP_SERVER_MODE": "stdio"},
	}

	transport, err := buildStdioTransport("stdio-example", cfg)
	if err != nil {
		t.Fatalf("buildStdioTransport error: %v", err)
	}
	cmdTransport, ok := transport.(*mcp.CommandTransport)
	if !ok {
		t.Fatalf("expected CommandTransport, got %T", transport)
	}
	expectedArgs := append([]string{cfg.Command}, cfg.Args...)
	if !reflect.DeepEqual(cmdTransport.Command.Args, expectedArgs) {
		t.Fatalf("command args = %v, expected %v", cmdTransport.Command.Args, expectedArgs)
	}
	if !envContains(cmdTransport.Command.Env, "MCP_SERVER_MODE", "stdio") {
		t.Fatalf("env missing MCP_SERVER_MODE from stdio config")
	}

	if _, err := buildStdioTransport("bad", &StdioConfig{}); err == nil {
		t.Fatalf("expected error for missing command")
	}
}

func TestPreferSSEHeuristic(t *testing.T) {
	t.Parallel()

	if preferSSE(&HTTPConfig{Endpoint: "http://host:9000/mcp"}) {
		t.Fatalf("did not expect SSE preference for non-sse endpoint")
	}
	if !preferSSE(&HTTPConfig{Endpoint: "http://host:8010/sse"}) {
		t.Fatalf("expected SSE preference for /sse endpoint")
	}
	override := true
	if !preferSSE(&HTTPConfig{Endpoint: "http://host:9000/mcp", PreferSSE: &override}) {
		t.Fatalf("explicit PreferSSE=true should win")
	}
	override = false
	if preferSSE(&HTTPConfig{Endpoint: "http://host:8010/sse", PreferSSE: &override}) {
		t.Fatalf("explicit PreferSSE=false should win over the suffix")
	}
}

func TestDecorateHTTPClientAddsHeaders(t *testing.T) {
	t.Parallel()

	headers := http.Header{"X-MCP-Source": []string{"multimcp-tests"}}
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if got := req.Header.Get("X-MCP-Source"); got != "multimcp-tests" {
			t.Fatalf("decorated header missing, got %q", got)
		}
		return &http.Response{
			StatusCode: http.StatusNoContent,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader("")),
			Request:    req,
		}, nil
	})

	decorated := decorateHTTPClient(&http.Client{Transport: rt}, headers)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://host:9000/mcp", nil)
	if err != nil {
		t.Fatalf("request creation failed: %v", err)
	}
	resp, err := decorated.Do(req)
	if err != nil {
		t.Fatalf("decorated client Do error: %v", err)
	}
	_ = resp.Body.Close()
}

func TestDecorateHTTPClientNoHeaders(t *testing.T) {
	t.Parallel()

	base := &http.Client{}
	if got := decorateHTTPClient(base, nil); got != base {
		t.Fatalf("expected the base client back when no headers are set")
	}
}

func TestIsMethodUnavailable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Method not found: tools/list"), true},
		{errors.New("server does not support tools"), true},
		{errors.New("unimplemented"), true},
		{errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		if got := isMethodUnavailable(tc.err); got != tc.want {
			t.Fatalf("isMethodUnavailable(%v) = %v, expected %v", tc.err, got, tc.want)
		}
	}
}

func TestKindHelpers(t *testing.T) {
	t.Parallel()

	stdio := &StdioConfig{Command: "python"}
	httpCfg := &HTTPConfig{Endpoint: "http://host:9000/mcp"}

	if KindOf(stdio) != KindStdio || KindOf(httpCfg) != KindHTTP {
		t.Fatalf("KindOf mismatch: %q %q", KindOf(stdio), KindOf(httpCfg))
	}
	if KindOf(nil) != "" {
		t.Fatalf("KindOf(nil) should be empty")
	}
	if _, ok := AsStdio(httpCfg); ok {
		t.Fatalf("AsStdio(http) should not narrow")
	}
	if _, ok := AsHTTP(stdio); ok {
		t.Fatalf("AsHTTP(stdio) should not narrow")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func envContains(env []string, key, value string) bool {
	target := key + "=" + value
	for _, item := range env {
		if item == target {
			return true
		}
	}
	return false
}
