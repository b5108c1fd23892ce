package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/vidframe/internal/runtimepath"
)

// ErrDaemonUnavailable is wrapped by errors from a client that could not
// reach the daemon socket.
var ErrDaemonUnavailable = errors.New("vidframe daemon is not running")

// RemoteError is a failure the daemon reported for a command.
type RemoteError struct {
	Command CommandType
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

// Client talks to the daemon over its unix socket, one connection per
// request.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	// An unresolved path surfaces as ErrDaemonUnavailable on first use.
	socketPath, _ := runtimepath.SocketPath()
	return &Client{socketPath: socketPath, timeout: 5 * time.Second}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", req.Command, err)
	}
	var resp Response
	if err := json.NewDecoder(bufio.NewReader(conn)).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", req.Command, err)
	}
	if resp.Status == "ERROR" {
		return nil, &RemoteError{Command: req.Command, Message: resp.Error}
	}
	return &resp, nil
}

// call sends cmd with payload and decodes the response data into out
// when out is not nil.
func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status. windowID 0 lists every window.
func (c *Client) GetStatus(windowID uint32) (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, WindowPayload{WindowID: windowID}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetDisplays retrieves the display configuration.
func (c *Client) GetDisplays() (*DisplaysData, error) {
	var data DisplaysData
	if err := c.call(CommandGetDisplays, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// RequestMode asks a window to transition to a new layout.
func (c *Client) RequestMode(p ModePayload) (*ModeData, error) {
	var data ModeData
	if err := c.call(CommandRequestMode, p, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ReportVideoGeometry forwards a decoder geometry change.
func (c *Client) ReportVideoGeometry(p VideoGeometryPayload) error {
	return c.call(CommandVideoGeometry, p, nil)
}

// FileOpened marks that a new file was just opened in the window.
func (c *Client) FileOpened(windowID uint32) error {
	return c.call(CommandFileOpened, WindowPayload{WindowID: windowID}, nil)
}

// Resize asks for a window size and returns the frame it took.
func (c *Client) Resize(p ResizePayload) (*ResizeData, error) {
	var data ResizeData
	if err := c.call(CommandResize, p, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Commit persists the current geometry of a window.
func (c *Client) Commit(windowID uint32) error {
	return c.call(CommandCommit, WindowPayload{WindowID: windowID}, nil)
}

// Ping checks that the daemon answers.
func (c *Client) Ping() error {
	_, err := c.GetStatus(0)
	return err
}
