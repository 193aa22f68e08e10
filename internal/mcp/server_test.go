package mcp

import "testing"

func TestHandleToolsListIncludesCoreOperations(t *testing.T) {
	s := NewServer(NewAPI())
	resp := s.handleRequest(&JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	listed, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("unexpected tools type %T", result["tools"])
	}
	want := map[string]bool{
		"run_deterministic": false, "run_monte_carlo": false, "run_sensitivity": false,
		"run_breakeven": false, "enumerate_breakeven_parameters": false, "preview_distribution": false,
		"add_stream": false, "update_stream": false, "remove_stream": false,
		"load_model": false, "save_model": false,
	}
	for _, tool := range listed {
		if _, tracked := want[tool.Name]; tracked {
			want[tool.Name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("expected tools/list to include %q", name)
		}
	}
}

func TestToolsCallLoadTemplateThenRunDeterministic(t *testing.T) {
	s := NewServer(NewAPI())

	loadResp := s.handleRequest(&JSONRPCRequest{
		JSONRPC: "2.0", ID: 1, Method: "tools/call",
		Params: map[string]interface{}{
			"name":      "load_template",
			"arguments": map[string]interface{}{"name": "flat-revenue"},
		},
	})
	if loadResp.Error != nil {
		t.Fatalf("unexpected error: %v", loadResp.Error)
	}
	result, ok := loadResp.Result.(ToolResult)
	if !ok {
		t.Fatalf("unexpected result type %T", loadResp.Result)
	}
	structured, ok := result.StructuredContent.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected structured content type %T", result.StructuredContent)
	}
	modelID, _ := structured["model_id"].(string)
	if modelID == "" {
		t.Fatal("expected a non-empty model_id")
	}

	runResp := s.handleRequest(&JSONRPCRequest{
		JSONRPC: "2.0", ID: 2, Method: "tools/call",
		Params: map[string]interface{}{
			"name":      "run_deterministic",
			"arguments": map[string]interface{}{"model_id": modelID},
		},
	})
	if runResp.Error != nil {
		t.Fatalf("unexpected error: %v", runResp.Error)
	}
}

func TestToolsCallUnknownToolIsInvalidParams(t *testing.T) {
	s := NewServer(NewAPI())
	resp := s.handleRequest(&JSONRPCRequest{
		JSONRPC: "2.0", ID: 1, Method: "tools/call",
		Params: map[string]interface{}{"name": "does_not_exist", "arguments": map[string]interface{}{}},
	})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected an invalid-params error, got %+v", resp.Error)
	}
}

func TestResourcesListAndReadRoundTrip(t *testing.T) {
	s := NewServer(NewAPI())
	id := s.api.NewModel("widget-free", npvSettings(12, 0.12, 0))

	listResp := s.handleRequest(&JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "resources/list"})
	result, ok := listResp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result type %T", listResp.Result)
	}
	resources, ok := result["resources"].([]Resource)
	if !ok || len(resources) != 1 {
		t.Fatalf("expected exactly one resource, got %+v", result["resources"])
	}

	readResp := s.handleRequest(&JSONRPCRequest{
		JSONRPC: "2.0", ID: 2, Method: "resources/read",
		Params: map[string]interface{}{"uri": modelURIPrefix + id},
	})
	if readResp.Error != nil {
		t.Fatalf("unexpected error: %v", readResp.Error)
	}
}

func TestHandleRequestUnknownMethod(t *testing.T) {
	s := NewServer(NewAPI())
	resp := s.handleRequest(&JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "not/a/method"})
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected a method-not-found error, got %+v", resp.Error)
	}
}
