package mpv

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jwulff/lectern/internal/monitoring"
)

// mockMPV is a fake mpv IPC server. It keeps a property table and records
// every command it receives.
type mockMPV struct {
	mu       sync.Mutex
	props    map[string]interface{}
	received [][]interface{}
	// preamble lines are written before each reply, to mimic events
	// arriving ahead of a response.
	preamble []Response
	// stall is how many upcoming commands go unanswered.
	stall int
}

func newMockMPV() *mockMPV {
	return &mockMPV{props: map[string]interface{}{}}
}

func (m *mockMPV) set(name string, v interface{}) {
	m.mu.Lock()
	m.props[name] = v
	m.mu.Unlock()
}

func (m *mockMPV) commands() [][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]interface{}(nil), m.received...)
}

func (m *mockMPV) reply(cmd Command) []Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, cmd.Command)
	if m.stall > 0 {
		m.stall--
		return nil
	}

	out := append([]Response(nil), m.preamble...)
	m.preamble = nil

	resp := Response{RequestID: cmd.RequestID, Error: "success"}
	name, _ := cmd.Command[0].(string)
	switch name {
	case "get_property":
		prop, _ := cmd.Command[1].(string)
		v, ok := m.props[prop]
		if !ok {
			resp.Error = "property unavailable"
			break
		}
		resp.Data, _ = json.Marshal(v)
	case "set_property":
		prop, _ := cmd.Command[1].(string)
		m.props[prop] = cmd.Command[2]
	case "seek":
		m.props[PropTimePos] = cmd.Command[1]
	case "loadfile":
	default:
		resp.Error = "invalid parameter"
	}
	return append(out, resp)
}

// start serves connections on a socket under t.TempDir().
func (m *mockMPV) start(t *testing.T) (string, func()) {
	t.Helper()

	dir := t.TempDir()
	sockPath := filepath.Join(dir, "mpv.sock")

	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go m.serve(conn)
		}
	}()

	return sockPath, func() {
		ln.Close()
		os.Remove(sockPath)
	}
}

func (m *mockMPV) serve(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var cmd Command
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			return
		}
		for _, r := range m.reply(cmd) {
			data, _ := json.Marshal(r)
			conn.Write(append(data, '\n'))
		}
	}
}

func connectMock(t *testing.T, m *mockMPV) (*Client, func()) {
	t.Helper()
	sockPath, cleanup := m.start(t)
	client, err := Connect(sockPath)
	if err != nil {
		cleanup()
		t.Fatalf("connect: %v", err)
	}
	return client, func() {
		client.Close()
		cleanup()
	}
}

func TestClientGetFloat(t *testing.T) {
	m := newMockMPV()
	m.set(PropTimePos, 12.5)
	client, done := connectMock(t, m)
	defer done()

	got, err := client.GetFloat(PropTimePos)
	if err != nil {
		t.Fatalf("GetFloat: %v", err)
	}
	if got != 12.5 {
		t.Errorf("time-pos = %v, want 12.5", got)
	}
}

func TestClientSkipsEventsBeforeReply(t *testing.T) {
	m := newMockMPV()
	m.set(PropPause, true)
	m.preamble = []Response{{Event: "seek"}, {Event: "playback-restart"}}
	client, done := connectMock(t, m)
	defer done()

	paused, err := client.GetBool(PropPause)
	if err != nil {
		t.Fatalf("GetBool: %v", err)
	}
	if !paused {
		t.Error("pause = false, want true")
	}

	evs := client.Events()
	if len(evs) != 2 {
		t.Fatalf("events = %d, want 2", len(evs))
	}
	if evs[0].Event != "seek" {
		t.Errorf("events[0] = %q, want %q", evs[0].Event, "seek")
	}
	if len(client.Events()) != 0 {
		t.Error("Events should drain the buffer")
	}
}

func TestClientCommandError(t *testing.T) {
	m := newMockMPV()
	client, done := connectMock(t, m)
	defer done()

	_, err := client.GetFloat(PropDuration)
	if !errors.Is(err, ErrCommand) {
		t.Fatalf("err = %v, want ErrCommand", err)
	}
}

func TestClientSetAndSeek(t *testing.T) {
	m := newMockMPV()
	client, done := connectMock(t, m)
	defer done()

	if err := client.SetProperty(PropPause, true); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}
	if err := client.Seek(42); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	cmds := m.commands()
	if len(cmds) != 2 {
		t.Fatalf("commands = %d, want 2", len(cmds))
	}
	if cmds[1][0] != "seek" || cmds[1][2] != "absolute" {
		t.Errorf("seek command = %v", cmds[1])
	}
}

func TestClientConnectFailure(t *testing.T) {
	_, err := Connect("/nonexistent/path/mpv.sock")
	if err == nil {
		t.Error("expected error connecting to nonexistent socket")
	}
}

func TestClientClosedConnection(t *testing.T) {
	dir := t.TempDir()
	sockPath := filepath.Join(dir, "mpv.sock")
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 4096)
		conn.Read(buf)
		conn.Close()
	}()

	client, err := Connect(sockPath)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	_, err = client.SendCommand("get_property", PropPause)
	if !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestClientReconnectsAfterTimeout(t *testing.T) {
	monitoring.SetLogger(nil)
	m := newMockMPV()
	m.set(PropTimePos, 7.0)
	m.stall = 1
	client, done := connectMock(t, m)
	defer done()
	client.timeout = 100 * time.Millisecond

	_, err := client.GetFloat(PropTimePos)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}

	got, err := client.GetFloat(PropTimePos)
	if err != nil {
		t.Fatalf("GetFloat after timeout: %v", err)
	}
	if got != 7 {
		t.Errorf("time-pos = %v, want 7", got)
	}
}
