// Package mcp exposes helmsman over the Model Context Protocol, so agent
// frameworks and mission consoles can evaluate arbitration decisions,
// inspect daemon state and steer the control mode through typed tools.
//
// The server does not own the arbitration state. Stateful tools talk to a
// running daemon through its file transport: status and pending read the
// published state file, override and respond drop messages into the inbox.
// The check tool evaluates the engine directly and needs no daemon.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oceanbotics/helmsman/internal/authority"
	"github.com/oceanbotics/helmsman/internal/config"
)

// Config holds MCP server configuration.
type Config struct {
	// ConfigPath locates the helmsman config file; empty uses the default
	// search path.
	ConfigPath string
}

// Server wraps the MCP SDK server with helmsman arbitration tools.
type Server struct {
	mcpServer *mcpsdk.Server
	engine    *authority.Engine

	statusPath string
	inbox      string
	storePath  string
	auditPath  string
}

// New creates an MCP server with loaded configuration and registered tools.
func New(cfg Config) (*Server, error) {
	appCfg, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	s := &Server{
		engine: authority.New(authority.Config{
			CriticalLowThreshold: appCfg.Engine.CriticalLowThreshold,
			LowThreshold:         appCfg.Engine.LowThreshold,
			HighThreshold:        appCfg.Engine.HighThreshold,
			MinModeDuration:      appCfg.MinModeDuration(),
		}),
		statusPath: statusFilePath(appCfg),
		inbox:      appCfg.Dirs.Inbox,
		storePath:  appCfg.Store,
		auditPath:  appCfg.AuditLog,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "helmsman",
			Version: "0.3.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all helmsman tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "helmsman_check",
		Description: "Evaluate a control-authority decision for a hypothetical situation without touching the running mission (dry-run).",
	}, s.handleCheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "helmsman_status",
		Description: "Read the current arbitration state of the running daemon: control mode, mission phase and any pending confirmation request.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "helmsman_override",
		Description: "Request an explicit control mode for the running mission. Overrides are arbitrated with top priority; unsafe ones are blocked.",
	}, s.handleOverride)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "helmsman_respond",
		Description: "Answer the pending confirmation request. Accepting commits the offered mode change; declining keeps the current mode.",
	}, s.handleRespond)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "helmsman_pending",
		Description: "Show the outstanding confirmation request, if any, with its deadline.",
	}, s.handlePending)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "helmsman_history",
		Description: "Query recent arbitration history: committed mode changes or per-cycle decisions, newest first.",
	}, s.handleHistory)
}
