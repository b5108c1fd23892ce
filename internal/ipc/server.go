package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/vidframe/internal/config"
	"github.com/1broseidon/vidframe/internal/controller"
	"github.com/1broseidon/vidframe/internal/daemon"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/runtimepath"
)

// requestTimeout bounds how long a request may wait on the main loop.
const requestTimeout = 3 * time.Second

// Host is the daemon side of the IPC server. *daemon.Daemon implements it.
type Host interface {
	Config() *config.Config
	Uptime() time.Duration
	Do(ctx context.Context, windowID uint32, fn func(*controller.Controller) error) error
	Status(ctx context.Context, windowID uint32) (daemon.WindowStatus, error)
	Windows(ctx context.Context) ([]daemon.WindowStatus, error)
	Resize(ctx context.Context, windowID uint32, size geometry.Size) (geometry.Rect, error)
	Screens() (geometry.Screens, error)
	Reload() (*config.Config, error)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	host         Host
	conns        sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the runtime socket path.
func NewServer(host Host) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		host:       host,
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	s.conns.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.conns.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	resp := s.handleCommand(ctx, req)
	cancel()

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus(ctx, req.Payload)
	case CommandGetDisplays:
		return s.handleGetDisplays()
	case CommandRequestMode:
		return s.handleRequestMode(ctx, req.Payload)
	case CommandVideoGeometry:
		return s.handleVideoGeometry(ctx, req.Payload)
	case CommandFileOpened:
		return s.handleFileOpened(ctx, req.Payload)
	case CommandResize:
		return s.handleResize(ctx, req.Payload)
	case CommandCommit:
		return s.handleCommit(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	if _, err := s.host.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus reports every window, or one when window_id is set.
func (s *Server) handleGetStatus(ctx context.Context, payload json.RawMessage) *Response {
	var req WindowPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid status payload: %v", err))
	}

	status := StatusData{
		UptimeSeconds: int64(s.host.Uptime().Seconds()),
		DaemonRunning: true,
		WindowClass:   s.host.Config().Daemon.WindowClass,
	}
	if req.WindowID != 0 {
		st, err := s.host.Status(ctx, req.WindowID)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
		}
		status.Windows = []daemon.WindowStatus{st}
	} else {
		windows, err := s.host.Windows(ctx)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
		}
		status.Windows = windows
	}

	resp, _ := NewOKResponse(status)
	return resp
}

// handleGetDisplays returns the screens the controllers lay out against.
func (s *Server) handleGetDisplays() *Response {
	screens, err := s.host.Screens()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get displays: %v", err))
	}

	resp, _ := NewOKResponse(NewDisplaysData(screens))
	return resp
}

func (s *Server) handleRequestMode(ctx context.Context, payload json.RawMessage) *Response {
	var req ModePayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid mode payload: %v", err))
	}
	legacy := s.host.Config().Window.LegacyFullScreen

	var data ModeData
	err := s.host.Do(ctx, req.WindowID, func(c *controller.Controller) error {
		spec, err := req.Spec(c.Spec(), legacy)
		if err != nil {
			return err
		}
		data.Queued = c.Transitioning()
		data.Spec = spec.String()
		c.RequestMode(spec)
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to request mode: %v", err))
	}
	log.Printf("IPC: Requested mode %s", data.Spec)

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleVideoGeometry(ctx context.Context, payload json.RawMessage) *Response {
	var req VideoGeometryPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid video payload: %v", err))
	}
	g := req.VideoGeometry()
	err := s.host.Do(ctx, req.WindowID, func(c *controller.Controller) error {
		c.ApplyVideoGeometryChange(g)
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to apply video geometry: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleFileOpened(ctx context.Context, payload json.RawMessage) *Response {
	var req WindowPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}
	err := s.host.Do(ctx, req.WindowID, func(c *controller.Controller) error {
		c.NotifyFileOpened()
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to mark file opened: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleResize(ctx context.Context, payload json.RawMessage) *Response {
	var req ResizePayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid resize payload: %v", err))
	}
	if req.Width <= 0 || req.Height <= 0 {
		return NewErrorResponse("width and height must be positive")
	}

	frame, err := s.host.Resize(ctx, req.WindowID, geometry.Size{W: req.Width, H: req.Height})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to resize: %v", err))
	}

	resp, _ := NewOKResponse(ResizeData{Frame: frame})
	return resp
}

func (s *Server) handleCommit(ctx context.Context, payload json.RawMessage) *Response {
	var req WindowPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}
	err := s.host.Do(ctx, req.WindowID, func(c *controller.Controller) error {
		c.CommitAndPersist()
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to commit: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// decodePayload accepts an empty payload as the zero value.
func decodePayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	return json.Unmarshal(payload, v)
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop closes the listener and waits for in-flight requests.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
