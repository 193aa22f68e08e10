package mcp

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// Server is the MCP JSON-RPC server: a thin transport wrapper around API
// exposing the same operations as tools, with session bookkeeping via
// sync.Map and a dual SSE/Streamable-HTTP transport on one endpoint.
type Server struct {
	api      *API
	sessions sync.Map // sessionID -> *Session
}

// Session represents one connected MCP client.
type Session struct {
	ID       string
	Messages chan []byte
}

// NewServer creates an MCP server over api.
func NewServer(api *API) *Server {
	return &Server{api: api}
}

// HandleHealth reports liveness and the number of open sessions.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	sessionCount := 0
	s.sessions.Range(func(_, _ interface{}) bool {
		sessionCount++
		return true
	})
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "ok",
		"sessions": sessionCount,
		"models":   len(s.api.models),
	})
}

// HandleMCP is the unified MCP endpoint supporting both transports:
//   - GET: the old HTTP+SSE transport (2024-11-05), returning an SSE
//     stream with an endpoint event.
//   - POST: the Streamable HTTP transport (2025-06-18), handling one
//     JSON-RPC exchange directly.
func (s *Server) HandleMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleSSE(w, r)
	case http.MethodPost:
		s.handleStreamableHTTP(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sessionID := uuid.New().String()
	session := &Session{ID: sessionID, Messages: make(chan []byte, 100)}
	s.sessions.Store(sessionID, session)
	log.Printf("SSE session created: %s", sessionID)

	fmt.Fprintf(w, "event: endpoint\ndata: /mcp/messages?sessionId=%s\n\n", sessionID)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			s.sessions.Delete(sessionID)
			log.Printf("SSE session closed: %s", sessionID)
			return
		case msg := <-session.Messages:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}

func (s *Server) handleStreamableHTTP(w http.ResponseWriter, r *http.Request) {
	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(&JSONRPCResponse{
			JSONRPC: "2.0",
			Error:   &JSONRPCError{Code: codeParseError, Message: "parse error: " + err.Error()},
		})
		return
	}

	log.Printf("MCP request: method=%s id=%v", req.Method, req.ID)
	response := s.handleRequest(&req)

	if req.Method == "initialize" {
		sessionID := uuid.New().String()
		w.Header().Set("Mcp-Session-Id", sessionID)
		s.sessions.Store(sessionID, &Session{ID: sessionID, Messages: make(chan []byte, 100)})
		log.Printf("Streamable HTTP session created: %s", sessionID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleMessages handles MCP messages posted against an existing SSE
// session (the legacy transport's message-delivery endpoint).
func (s *Server) HandleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "Missing sessionId", http.StatusBadRequest)
		return
	}
	sessionI, ok := s.sessions.Load(sessionID)
	if !ok {
		http.Error(w, "Unknown session", http.StatusNotFound)
		return
	}
	session := sessionI.(*Session)

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	log.Printf("MCP message: method=%s id=%v session=%s", req.Method, req.ID, sessionID)
	response := s.handleRequest(&req)

	respBytes, _ := json.Marshal(response)
	select {
	case session.Messages <- respBytes:
	default:
		log.Printf("Session buffer full: %s", sessionID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleRequest dispatches one JSON-RPC request by method name.
func (s *Server) handleRequest(req *JSONRPCRequest) *JSONRPCResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "resources/list":
		return s.handleResourcesList(req)
	case "resources/read":
		return s.handleResourcesRead(req)
	default:
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &JSONRPCError{Code: codeMethodNotFound, Message: "Method not found"},
		}
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools":     map[string]interface{}{},
				"resources": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "dcf-engine-mcp-server",
				"version": "1.0.0",
			},
		},
	}
}
