package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"electricity-price/internal/tools"

	"go.uber.org/zap"
)

const maxMessageSize = 4 << 20

type Server struct {
	tools   *tools.Service
	logger  *zap.Logger
	name    string
	version string

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
}

func NewServer(svc *tools.Service, logger *zap.Logger, name, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		tools:    svc,
		logger:   logger,
		name:     name,
		version:  version,
		inflight: make(map[string]context.CancelFunc),
	}
}

// Handle processes one JSON-RPC message and returns the encoded reply, or
// nil for notifications.
func (s *Server) Handle(ctx context.Context, msg []byte) []byte {
	var req rpcRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		s.logger.Warn("Failed to parse JSON-RPC message", zap.Error(err))
		return s.encode(rpcResponse{ID: json.RawMessage("null"), Error: &rpcError{Code: codeParseError, Message: "parse error"}})
	}
	if req.JSONRPC != jsonRPCVersion || req.Method == "" {
		if req.isNotification() {
			return nil
		}
		return s.encode(rpcResponse{ID: req.ID, Error: &rpcError{Code: codeInvalidRequest, Message: "invalid request"}})
	}

	if req.isNotification() {
		s.notify(&req)
		return nil
	}

	result, rpcErr := s.dispatch(ctx, &req)
	if rpcErr != nil {
		return s.encode(rpcResponse{ID: req.ID, Error: rpcErr})
	}
	return s.encode(rpcResponse{ID: req.ID, Result: result})
}

func (s *Server) dispatch(ctx context.Context, req *rpcRequest) (any, *rpcError) {
	s.logger.Debug("JSON-RPC request", zap.String("method", req.Method), zap.ByteString("id", req.ID))

	switch req.Method {
	case "initialize":
		var p initializeParams
		if len(req.Params) > 0 {
			_ = json.Unmarshal(req.Params, &p)
		}
		return initializeResult{
			ProtocolVersion: negotiateVersion(p.ProtocolVersion),
			Capabilities:    map[string]any{"tools": map[string]any{"listChanged": false}},
			ServerInfo:      serverInfo{Name: s.name, Version: s.version},
		}, nil

	case "ping":
		return struct{}{}, nil

	case "tools/list":
		return toolsListResult{Tools: s.tools.Definitions()}, nil

	case "tools/call":
		var p callToolParams
		if err := json.Unmarshal(req.Params, &p); err != nil || p.Name == "" {
			return nil, &rpcError{Code: codeInvalidParams, Message: "tools/call requires a tool name"}
		}
		reply := s.callTool(ctx, req.ID, p)
		return callToolResult{
			Content: []textContent{{Type: "text", Text: reply.Text}},
			IsError: reply.IsError(),
		}, nil

	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}
}

// callTool registers the call so notifications/cancelled can abandon it.
func (s *Server) callTool(ctx context.Context, id json.RawMessage, p callToolParams) tools.Reply {
	ctx, cancel := context.WithCancel(ctx)
	key := requestKey(id)

	s.mu.Lock()
	s.inflight[key] = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
		cancel()
	}()

	return s.tools.Call(ctx, p.Name, p.Arguments)
}

func (s *Server) notify(req *rpcRequest) {
	switch req.Method {
	case "notifications/cancelled":
		var p cancelledParams
		if err := json.Unmarshal(req.Params, &p); err != nil || len(p.RequestID) == 0 {
			return
		}
		s.mu.Lock()
		cancel, ok := s.inflight[requestKey(p.RequestID)]
		s.mu.Unlock()
		if ok {
			s.logger.Info("Cancelling request", zap.ByteString("id", p.RequestID), zap.String("reason", p.Reason))
			cancel()
		}
	case "notifications/initialized":
		s.logger.Info("Client initialized")
	default:
		s.logger.Debug("Ignoring notification", zap.String("method", req.Method))
	}
}

func (s *Server) encode(resp rpcResponse) []byte {
	resp.JSONRPC = jsonRPCVersion
	out, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("Failed to encode JSON-RPC response", zap.Error(err))
		return nil
	}
	return out
}

// Serve reads messages until next returns an error, handling each one
// concurrently and passing replies to write one at a time. It waits for
// in-flight handlers before returning; io.EOF from next is a clean stop.
func (s *Server) Serve(ctx context.Context, next func() ([]byte, error), write func([]byte) error) error {
	var (
		wg      sync.WaitGroup
		writeMu sync.Mutex
	)
	defer wg.Wait()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if len(bytes.TrimSpace(msg)) == 0 {
			continue
		}

		wg.Add(1)
		go func(msg []byte) {
			defer wg.Done()
			resp := s.Handle(ctx, msg)
			if resp == nil {
				return
			}
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := write(resp); err != nil {
				s.logger.Warn("Failed to write JSON-RPC response", zap.Error(err))
			}
		}(msg)
	}
}

// ServeStdio runs Serve over newline-delimited messages.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)

	next := func() ([]byte, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		return append([]byte(nil), scanner.Bytes()...), nil
	}
	write := func(b []byte) error {
		_, err := w.Write(append(b, '\n'))
		return err
	}
	return s.Serve(ctx, next, write)
}

func negotiateVersion(requested string) string {
	for _, v := range supportedProtocolVersions {
		if v == requested {
			return v
		}
	}
	return supportedProtocolVersions[0]
}

// requestKey normalizes a JSON-RPC id so 7 and "7" stay distinct.
func requestKey(id json.RawMessage) string {
	return string(bytes.TrimSpace(id))
}
