// Package mcp exposes the daemon to MCP clients over stdio. Every tool
// proxies the daemon IPC socket except fit_preview, which also works
// without a running daemon.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/vidframe/internal/config"
	"github.com/1broseidon/vidframe/internal/ipc"
)

const (
	ServerName    = "vidframe"
	ServerVersion = "0.1.0"
)

// DaemonClient is the subset of the IPC client the tools use.
type DaemonClient interface {
	GetStatus(windowID uint32) (*ipc.StatusData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	RequestMode(p ipc.ModePayload) (*ipc.ModeData, error)
	ReportVideoGeometry(p ipc.VideoGeometryPayload) error
	FileOpened(windowID uint32) error
}

// Server is the MCP server for vidframe.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	client    DaemonClient
}

// NewServer creates a new MCP server that talks to the daemon through client.
func NewServer(cfg *config.Config, client DaemonClient) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		config: cfg,
		client: client,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the layout state of the attached player windows: mode, window frame, video rect, video aspect and whether a transition is running.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "request_mode",
		Description: "Ask a player window to transition to a layout mode (windowed, windowed-interactive, fullscreen, fullscreen-interactive, music). Unset fields keep their current value. Requests made during a running transition are queued and applied in order.",
	}, s.handleRequestMode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "report_video_geometry",
		Description: "Report the decoded video size of a player window. The window adjusts its aspect and, depending on resize_timing, its size. Set file_opened for the first report of a new file.",
	}, s.handleReportVideoGeometry)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List the displays the daemon lays windows out on, with full and usable frames.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "fit_preview",
		Description: "Compute the window frame and video rect a windowed player would take for a video size and fit option, without moving any window.",
	}, s.handleFitPreview)
}
