package mcp

import (
	"encoding/json"
	"strings"
)

const modelURIPrefix = "model://"

// handleResourcesList exposes every stored model as a readable resource:
// a stored model's document form is inspectable, URI-addressed content a
// client can fetch by name.
func (s *Server) handleResourcesList(req *JSONRPCRequest) *JSONRPCResponse {
	resources := make([]Resource, 0, len(s.api.models))
	for id, m := range s.api.models {
		resources = append(resources, Resource{
			URI:         modelURIPrefix + id,
			Name:        m.Name,
			Description: "Model document",
			MimeType:    "application/json",
		})
	}
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]interface{}{"resources": resources},
	}
}

func (s *Server) handleResourcesRead(req *JSONRPCRequest) *JSONRPCResponse {
	uri, _ := req.Params["uri"].(string)
	if !strings.HasPrefix(uri, modelURIPrefix) {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &JSONRPCError{Code: codeInvalidParams, Message: "Resource not found: " + uri},
		}
	}

	id := strings.TrimPrefix(uri, modelURIPrefix)
	doc, err := s.api.SaveModel(id)
	if err != nil {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &JSONRPCError{Code: codeInvalidParams, Message: err.Error()},
		}
	}
	text, err := json.Marshal(doc)
	if err != nil {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &JSONRPCError{Code: codeToolError, Message: err.Error()},
		}
	}

	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"contents": []ResourceContents{
				{URI: uri, MimeType: "application/json", Text: string(text)},
			},
		},
	}
}
