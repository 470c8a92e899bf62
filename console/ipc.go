// ipc.go - a Unix-domain control socket for injecting input into a
// running kernel instance without restarting it, grounded on the
// teacher's runtime_ipc.go (net.Listen("unix", ...), JSON request/
// response, stale-socket cleanup by dialing before removing). The
// teacher's single command (open a program file) becomes two: "keys"
// (type text at the running kernel's keyboard device) and "script" (pass
// a Lua file path to the runScript callback NewIPCServer was given).
package console

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rockthebesr/xeros/kernel"
)

const ipcMaxRequestSize = 4096

type ipcRequest struct {
	Cmd  string `json:"cmd"`
	Text string `json:"text,omitempty"`
	Path string `json:"path,omitempty"`
}

type ipcResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// IPCServer dispatches "keys" (type text into k) and "script" (hand path
// to runScript) requests arriving over a Unix socket.
type IPCServer struct {
	listener  net.Listener
	k         *kernel.Kernel
	runScript func(path string) error
	done      chan struct{}
	sockPath  string
}

func resolveSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "xeros.sock")
	}
	return "/tmp/xeros.sock"
}

// NewIPCServer binds the control socket at the default path. runScript
// may be nil if this instance doesn't support "script" requests.
func NewIPCServer(k *kernel.Kernel, runScript func(path string) error) (*IPCServer, error) {
	return newIPCServerAt(resolveSocketPath(), k, runScript)
}

func newIPCServerAt(sockPath string, k *kernel.Kernel, runScript func(path string) error) (*IPCServer, error) {
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		conn, dialErr := net.DialTimeout("unix", sockPath, 2*time.Second)
		if dialErr != nil {
			os.Remove(sockPath)
			ln, err = net.Listen("unix", sockPath)
			if err != nil {
				return nil, fmt.Errorf("ipc bind failed: %w", err)
			}
		} else {
			conn.Close()
			return nil, fmt.Errorf("another instance is already running")
		}
	}
	return &IPCServer{listener: ln, k: k, runScript: runScript, done: make(chan struct{}), sockPath: sockPath}, nil
}

// Start begins accepting IPC connections in a goroutine.
func (s *IPCServer) Start() { go s.acceptLoop() }

// Stop closes the listener and waits for the accept loop to exit.
func (s *IPCServer) Stop() {
	s.listener.Close()
	<-s.done
	os.Remove(s.sockPath)
}

func (s *IPCServer) acceptLoop() {
	defer close(s.done)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *IPCServer) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	buf := make([]byte, ipcMaxRequestSize)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return
	}

	var req ipcRequest
	if err := json.Unmarshal(buf[:n], &req); err != nil {
		s.writeResponse(conn, ipcResponse{Status: "err", Message: "invalid json"})
		return
	}

	switch req.Cmd {
	case "keys":
		for i := 0; i < len(req.Text); i++ {
			feedASCII(s.k, req.Text[i])
		}
		s.writeResponse(conn, ipcResponse{Status: "ok"})

	case "script":
		if s.runScript == nil {
			s.writeResponse(conn, ipcResponse{Status: "err", Message: "scripting not enabled"})
			return
		}
		if err := validateScriptPath(req.Path); err != nil {
			s.writeResponse(conn, ipcResponse{Status: "err", Message: err.Error()})
			return
		}
		if err := s.runScript(req.Path); err != nil {
			s.writeResponse(conn, ipcResponse{Status: "err", Message: err.Error()})
			return
		}
		s.writeResponse(conn, ipcResponse{Status: "ok"})

	default:
		s.writeResponse(conn, ipcResponse{Status: "err", Message: "unknown command"})
	}
}

func (s *IPCServer) writeResponse(conn net.Conn, resp ipcResponse) {
	data, _ := json.Marshal(resp)
	conn.Write(data)
}

func validateScriptPath(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("absolute path required")
	}
	if strings.ToLower(filepath.Ext(path)) != ".lua" {
		return fmt.Errorf("unsupported extension: %s", filepath.Ext(path))
	}
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	return nil
}

// SendIPCKeys types text into the running instance at the default
// socket.
func SendIPCKeys(text string) error { return sendIPC(resolveSocketPath(), ipcRequest{Cmd: "keys", Text: text}) }

// SendIPCScript asks the running instance to load and run a Lua script.
func SendIPCScript(path string) error {
	return sendIPC(resolveSocketPath(), ipcRequest{Cmd: "script", Path: path})
}

func sendIPC(sockPath string, req ipcRequest) error {
	conn, err := net.DialTimeout("unix", sockPath, 10*time.Second)
	if err != nil {
		return fmt.Errorf("cannot connect to running instance: %w", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	data, _ := json.Marshal(req)
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	buf := make([]byte, ipcMaxRequestSize)
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}

	var resp ipcResponse
	if err := json.Unmarshal(buf[:n], &resp); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	if resp.Status != "ok" {
		return fmt.Errorf("remote error: %s", resp.Message)
	}
	return nil
}
