// Package mcp exposes the relay as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"kafka-relay/src/contracts"
	"kafka-relay/src/logger"
	"kafka-relay/src/service"
	"kafka-relay/src/store"
)

// Error kinds prefixed to tool error results.
const (
	kindInvalidInput = "invalid_input"
	kindNotFound     = "not_found"
	kindUpstream     = "upstream_send_failed"
	kindInternal     = "internal"
)

// Server is the MCP server for the relay.
type Server struct {
	mcpServer *server.MCPServer
	svc       *service.Service
	logger    logger.Logger
}

// NewServer creates a new MCP server backed by svc.
func NewServer(svc *service.Service, log logger.Logger) *Server {
	s := server.NewMCPServer(
		"kafka-relay",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: s,
		svc:       svc,
		logger:    log,
	}
	srv.registerTools()

	return srv
}

func (s *Server) registerTools() {
	produceTool := mcp.NewTool("produce_message",
		mcp.WithDescription("Send a message to the Kafka topic. The message is recorded and broadcast only after the broker acknowledges it."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Partition key"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Message payload"),
		),
	)

	getTool := mcp.NewTool("get_message",
		mcp.WithDescription("Get a previously produced message by id."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Message id returned by produce_message"),
		),
	)

	updateTool := mcp.NewTool("update_message",
		mcp.WithDescription("Send new content for an existing message to Kafka and record it under the same id."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Message id"),
		),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("New partition key"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("New payload"),
		),
	)

	deleteTool := mcp.NewTool("delete_message",
		mcp.WithDescription("Forget a message. Nothing is sent to Kafka."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Message id"),
		),
	)

	listTool := mcp.NewTool("list_messages",
		mcp.WithDescription("List all recorded messages in the order they were produced."),
	)

	s.mcpServer.AddTool(produceTool, s.handleProduce)
	s.mcpServer.AddTool(getTool, s.handleGet)
	s.mcpServer.AddTool(updateTool, s.handleUpdate)
	s.mcpServer.AddTool(deleteTool, s.handleDelete)
	s.mcpServer.AddTool(listTool, s.handleList)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) handleProduce(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, err := s.svc.Produce(ctx, produceRequest(request))
	if err != nil {
		return s.errorResult("produce_message", err), nil
	}
	return jsonResult(msg)
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, err := s.svc.Get(ctx, request.GetString("id", ""))
	if err != nil {
		return s.errorResult("get_message", err), nil
	}
	return jsonResult(msg)
}

func (s *Server) handleUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, err := s.svc.Update(ctx, request.GetString("id", ""), produceRequest(request))
	if err != nil {
		return s.errorResult("update_message", err), nil
	}
	return jsonResult(msg)
}

func (s *Server) handleDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	if err := s.svc.Delete(ctx, id); err != nil {
		return s.errorResult("delete_message", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s", id)), nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msgs, err := s.svc.List(ctx)
	if err != nil {
		return s.errorResult("list_messages", err), nil
	}
	if msgs == nil {
		msgs = []contracts.Message{}
	}
	return jsonResult(msgs)
}

// produceRequest keeps absent arguments nil so validation can tell them from empty strings.
func produceRequest(request mcp.CallToolRequest) contracts.ProduceRequest {
	args := request.GetArguments()
	var req contracts.ProduceRequest
	if v, ok := args["key"].(string); ok {
		req.Key = &v
	}
	if v, ok := args["body"].(string); ok {
		req.Body = &v
	}
	return req
}

func (s *Server) errorResult(tool string, err error) *mcp.CallToolResult {
	kind := errorKind(err)
	if kind == kindUpstream || kind == kindInternal {
		s.logger.Error("[MCP] %s failed: %v", tool, err)
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", kind, err))
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return kindInvalidInput
	case errors.As(err, new(store.ErrNotFound)):
		return kindNotFound
	case errors.Is(err, service.ErrUpstreamSend):
		return kindUpstream
	default:
		return kindInternal
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: failed to marshal response: %v", kindInternal, err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
