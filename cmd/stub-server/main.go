// Command stub-server runs a minimal MCP server over Streamable HTTP for
// exercising the fanout client locally, e.g.
//
//	REVIT_MCP_URL=http://localhost:8787/mcp fanout tools
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/cors"
)

type echoArgs struct {
	Text string `json:"text" jsonschema:"text to echo back"`
}

type echoResult struct {
	Text string `json:"text"`
}

func echo(_ context.Context, _ *mcp.CallToolRequest, args echoArgs) (*mcp.CallToolResult, echoResult, error) {
	return nil, echoResult{Text: args.Text}, nil
}

type upperArgs struct {
	Text string `json:"text" jsonschema:"text to uppercase"`
}

func upper(_ context.Context, _ *mcp.CallToolRequest, args upperArgs) (*mcp.CallToolResult, echoResult, error) {
	return nil, echoResult{Text: strings.ToUpper(args.Text)}, nil
}

func main() {
	addr := flag.String("addr", ":8787", "listen address")
	path := flag.String("path", "/mcp", "endpoint path for the Streamable handler")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "stub-server",
		Version: "0.1.0",
	}, &mcp.ServerOptions{HasTools: true})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "echo",
		Description: "Return the input text unchanged",
	}, echo)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "upper",
		Description: "Return the input text uppercased",
	}, upper)

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	mux := http.NewServeMux()
	mux.Handle(*path, handler)
	mux.Handle(*path+"/", handler)

	// Browser-based MCP clients need CORS with the session header exposed.
	wrapped := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Mcp-Session-Id"},
	}).Handler(mux)

	srv := &http.Server{Addr: *addr, Handler: wrapped}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("stub MCP server on %s%s", *addr, *path)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("stub server stopped: %v", err)
	}
}
