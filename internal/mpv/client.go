package mpv

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jwulff/lectern/internal/monitoring"
)

// ErrClosed is returned when mpv closes the connection.
var ErrClosed = errors.New("connection closed")

// ErrCommand wraps a non-success reply from mpv.
var ErrCommand = errors.New("mpv command failed")

// ErrTimeout is returned when mpv does not answer within the timeout. The
// client has already reconnected, so the next command can be sent as usual.
var ErrTimeout = errors.New("mpv command timed out")

// DefaultTimeout bounds each command round trip.
const DefaultTimeout = 2 * time.Second

// maxPendingEvents caps how many events are buffered between drains.
const maxPendingEvents = 256

// SocketPath returns the default IPC socket path, the value to pass to
// mpv's --input-ipc-server.
func SocketPath() string {
	return filepath.Join(os.TempDir(), "lectern-mpv.sock")
}

// Client talks to mpv over its IPC socket.
type Client struct {
	path    string
	conn    net.Conn
	scanner *bufio.Scanner
	mu      sync.Mutex
	nextID  int64
	events  []Response
	timeout time.Duration
}

// Connect dials the mpv IPC socket.
func Connect(socketPath string) (*Client, error) {
	c := &Client{path: socketPath, timeout: DefaultTimeout}
	if err := c.dial(); err != nil {
		return nil, fmt.Errorf("connect to mpv: %w", err)
	}
	return c, nil
}

func (c *Client) dial() error {
	conn, err := net.Dial("unix", c.path)
	if err != nil {
		return err
	}
	c.conn = conn
	c.scanner = bufio.NewScanner(conn)
	c.scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB buffer
	return nil
}

// reconnect replaces a connection left mid-reply by a timeout. A late reply
// on the old connection would otherwise be read as the answer to the next
// command, and the scanner stays failed after a deadline error.
func (c *Client) reconnect(args []interface{}) error {
	monitoring.Logf("[mpv] %v timed out, reconnecting", args[0])
	c.conn.Close()
	if err := c.dial(); err != nil {
		return fmt.Errorf("%w: %v: reconnect: %v", ErrTimeout, args[0], err)
	}
	return fmt.Errorf("%w: %v", ErrTimeout, args[0])
}

// Close shuts down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// SendCommand sends args as one mpv command and returns its reply. Events
// that arrive before the reply are buffered for Events.
func (c *Client) SendCommand(args ...interface{}) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	data, err := json.Marshal(Command{Command: args, RequestID: id})
	if err != nil {
		return Response{}, fmt.Errorf("marshal command: %w", err)
	}

	conn := c.conn
	if c.timeout > 0 {
		conn.SetDeadline(time.Now().Add(c.timeout))
		defer conn.SetDeadline(time.Time{})
	}

	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return Response{}, c.reconnect(args)
		}
		return Response{}, fmt.Errorf("write command: %w", err)
	}

	for {
		resp, err := c.readLine()
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return Response{}, c.reconnect(args)
		}
		if err != nil {
			return Response{}, err
		}
		if resp.IsEvent() {
			c.bufferEvent(resp)
			continue
		}
		if resp.RequestID != 0 && resp.RequestID != id {
			// Reply to an earlier command that timed out.
			continue
		}
		if !resp.OK() {
			return resp, fmt.Errorf("%w: %v: %s", ErrCommand, args[0], resp.Error)
		}
		return resp, nil
	}
}

func (c *Client) readLine() (Response, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return Response{}, fmt.Errorf("read response: %w", err)
		}
		return Response{}, ErrClosed
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return Response{}, fmt.Errorf("unmarshal response: %w", err)
	}
	return resp, nil
}

func (c *Client) bufferEvent(ev Response) {
	if len(c.events) >= maxPendingEvents {
		c.events = c.events[1:]
	}
	c.events = append(c.events, ev)
}

// Events returns and clears the events buffered since the last call.
func (c *Client) Events() []Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	evs := c.events
	c.events = nil
	return evs
}

// GetFloat reads a numeric property.
func (c *Client) GetFloat(name string) (float64, error) {
	resp, err := c.SendCommand("get_property", name)
	if err != nil {
		return 0, err
	}
	return resp.Float()
}

// GetBool reads a flag property.
func (c *Client) GetBool(name string) (bool, error) {
	resp, err := c.SendCommand("get_property", name)
	if err != nil {
		return false, err
	}
	return resp.Bool()
}

// SetProperty writes a property.
func (c *Client) SetProperty(name string, value interface{}) error {
	_, err := c.SendCommand("set_property", name, value)
	return err
}

// Seek jumps to an absolute position in seconds.
func (c *Client) Seek(seconds float64) error {
	_, err := c.SendCommand("seek", seconds, "absolute", "exact")
	return err
}

// LoadFile replaces the playing file.
func (c *Client) LoadFile(path string) error {
	_, err := c.SendCommand("loadfile", path, "replace")
	return err
}
