package mcpserver

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pagebuilder/internal/service"
)

// Server exposes editor sessions to MCP clients as tools, resources and
// prompts.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue
	editor   *service.EditorService
	logger   *log.Logger

	mu            sync.Mutex
	activeSession string
}

// Deps holds what the app layer hands to the MCP server.
type Deps struct {
	Name    string
	Version string
	Emitter EventEmitter // nil in standalone mode
	Editor  *service.EditorService
	Logger  *log.Logger
	// AutoApprove skips user confirmation of destructive tools.
	AutoApprove bool
}

// New creates a server with every tool, resource and prompt registered.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	name, version := deps.Name, deps.Version
	if name == "" {
		name = "pagebuilder-mcp"
	}
	if version == "" {
		version = "1.0.0"
	}

	s := &Server{
		emitter:  deps.Emitter,
		approval: NewApprovalQueue(deps.Emitter, deps.AutoApprove),
		editor:   deps.Editor,
		logger:   logger.WithPrefix("mcp"),
	}

	s.mcp = server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerSessionTools()
	s.registerBlockTools()
	s.registerHistoryTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio serves MCP on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// MCP returns the underlying server, for transports other than stdio.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Approve forwards a user approval to the queue.
func (s *Server) Approve(actionID string) { s.approval.Approve(actionID) }

// Reject forwards a user rejection to the queue.
func (s *Server) Reject(actionID string) { s.approval.Reject(actionID) }

// ── Helpers ────────────────────────────────────────────────

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func (s *Server) setActiveSession(id string) {
	s.mu.Lock()
	s.activeSession = id
	s.mu.Unlock()
}

// resolveSessionID returns the sessionId argument, falling back to the
// session last created or opened.
func (s *Server) resolveSessionID(req mcp.CallToolRequest) (string, error) {
	if id := req.GetString("sessionId", ""); id != "" {
		return id, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeSession != "" {
		return s.activeSession, nil
	}
	return "", fmt.Errorf("no sessionId provided and no active session (use create_session or open_session first)")
}
