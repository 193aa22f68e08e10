package mcp

import (
	"encoding/json"
	"log"

	"github.com/areumfire/dcf-engine/internal/distribution"
	"github.com/areumfire/dcf-engine/internal/driver"
	"github.com/areumfire/dcf-engine/internal/model"
)

// tools is the fixed catalog of operations the server exposes, one per
// boundary operation of the valuation engine.
var tools = []Tool{
	{
		Name:        "load_model",
		Description: "Load a model document (name, settings, streams) and return a model id.",
		InputSchema: objectSchema(map[string]interface{}{
			"document": map[string]interface{}{"type": "object", "description": "A model document as described in the persistence format."},
		}, "document"),
		Annotations: &ToolAnnotations{ReadOnlyHint: false, DestructiveHint: false, OpenWorldHint: false},
	},
	{
		Name:        "save_model",
		Description: "Snapshot a stored model back into its document form.",
		InputSchema: objectSchema(map[string]interface{}{
			"model_id": map[string]interface{}{"type": "string"},
		}, "model_id"),
		Annotations: &ToolAnnotations{ReadOnlyHint: true},
	},
	{
		Name:        "list_templates",
		Description: "List the named starting-point model templates available.",
		InputSchema: objectSchema(nil),
		Annotations: &ToolAnnotations{ReadOnlyHint: true},
	},
	{
		Name:        "load_template",
		Description: "Materialize a new model from a named template and return its model id.",
		InputSchema: objectSchema(map[string]interface{}{
			"name": map[string]interface{}{"type": "string"},
		}, "name"),
		Annotations: &ToolAnnotations{ReadOnlyHint: false},
	},
	{
		Name:        "add_stream",
		Description: "Add a revenue or cost stream to a model.",
		InputSchema: objectSchema(map[string]interface{}{
			"model_id": map[string]interface{}{"type": "string"},
			"stream":   map[string]interface{}{"type": "object"},
		}, "model_id", "stream"),
		Annotations: &ToolAnnotations{ReadOnlyHint: false, DestructiveHint: false},
	},
	{
		Name:        "update_stream",
		Description: "Replace an existing stream's attributes.",
		InputSchema: objectSchema(map[string]interface{}{
			"model_id":  map[string]interface{}{"type": "string"},
			"stream_id": map[string]interface{}{"type": "string"},
			"stream":    map[string]interface{}{"type": "object"},
		}, "model_id", "stream_id", "stream"),
		Annotations: &ToolAnnotations{ReadOnlyHint: false, DestructiveHint: false},
	},
	{
		Name:        "remove_stream",
		Description: "Remove a stream from a model; its children become roots.",
		InputSchema: objectSchema(map[string]interface{}{
			"model_id":  map[string]interface{}{"type": "string"},
			"stream_id": map[string]interface{}{"type": "string"},
		}, "model_id", "stream_id"),
		Annotations: &ToolAnnotations{ReadOnlyHint: false, DestructiveHint: true},
	},
	{
		Name:        "run_deterministic",
		Description: "Run one deterministic pass: every distribution resolved to its expected value, producing NPV/IRR, terminal value, and payback.",
		InputSchema: objectSchema(map[string]interface{}{
			"model_id": map[string]interface{}{"type": "string"},
		}, "model_id"),
		Annotations: &ToolAnnotations{ReadOnlyHint: true, OpenWorldHint: false},
	},
	{
		Name:        "run_monte_carlo",
		Description: "Run a Monte Carlo simulation over the model's uncertain distributions and summarize the outcome distribution.",
		InputSchema: objectSchema(map[string]interface{}{
			"model_id":      map[string]interface{}{"type": "string"},
			"n_simulations": map[string]interface{}{"type": "number", "description": "Defaults to 10000 when omitted or <= 0."},
			"seed":          map[string]interface{}{"type": "number"},
		}, "model_id"),
		Annotations: &ToolAnnotations{ReadOnlyHint: true},
	},
	{
		Name:        "run_sensitivity",
		Description: "Rank every uncertain parameter by the NPV swing between its P10 and P90 (tornado chart data), top 15 by magnitude.",
		InputSchema: objectSchema(map[string]interface{}{
			"model_id": map[string]interface{}{"type": "string"},
		}, "model_id"),
		Annotations: &ToolAnnotations{ReadOnlyHint: true},
	},
	{
		Name:        "enumerate_breakeven_parameters",
		Description: "List every parameter a breakeven search can target, with its current P10/P50/P90.",
		InputSchema: objectSchema(map[string]interface{}{
			"model_id": map[string]interface{}{"type": "string"},
		}, "model_id"),
		Annotations: &ToolAnnotations{ReadOnlyHint: true},
	},
	{
		Name:        "run_breakeven",
		Description: "Solve for the value of a named parameter at which NPV equals a target.",
		InputSchema: objectSchema(map[string]interface{}{
			"model_id":       map[string]interface{}{"type": "string"},
			"parameter_name": map[string]interface{}{"type": "string"},
			"target_npv":     map[string]interface{}{"type": "number"},
		}, "model_id", "parameter_name", "target_npv"),
		Annotations: &ToolAnnotations{ReadOnlyHint: true},
	},
	{
		Name:        "preview_distribution",
		Description: "Preview the month-by-month values (or mean/P10/P90 band for stochastic kinds) a distribution would produce over a window.",
		InputSchema: objectSchema(map[string]interface{}{
			"distribution": map[string]interface{}{"type": "object"},
			"horizon":      map[string]interface{}{"type": "number"},
			"start_month":  map[string]interface{}{"type": "number"},
			"end_month":    map[string]interface{}{"type": "number"},
			"seed":         map[string]interface{}{"type": "number"},
		}, "distribution", "horizon"),
		Annotations: &ToolAnnotations{ReadOnlyHint: true},
	},
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{"type": "object"}
	if properties != nil {
		schema["properties"] = properties
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func (s *Server) handleToolsList(req *JSONRPCRequest) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]interface{}{"tools": tools},
	}
}

func (s *Server) handleToolsCall(req *JSONRPCRequest) *JSONRPCResponse {
	name, _ := req.Params["name"].(string)
	args, _ := req.Params["arguments"].(map[string]interface{})

	log.Printf("Tool call: %s", name)

	result, err := s.dispatchTool(name, args)
	if err != nil {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &JSONRPCError{Code: codeToolError, Message: err.Error()},
		}
	}
	if result == nil {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &JSONRPCError{Code: codeInvalidParams, Message: "Unknown tool: " + name},
		}
	}
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: ToolResult{
			Content:           []ContentBlock{{Type: "text", Text: "ok"}},
			StructuredContent: result,
		},
	}
}

// dispatchTool runs one named tool against s.api. A nil, nil return means
// the tool name is unrecognized; any other error is the tool's own.
func (s *Server) dispatchTool(name string, args map[string]interface{}) (interface{}, error) {
	switch name {
	case "load_model":
		var doc model.Document
		if err := decodeArg(args, "document", &doc); err != nil {
			return nil, err
		}
		id, err := s.api.LoadModel(doc)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"model_id": id}, nil

	case "save_model":
		doc, err := s.api.SaveModel(getString(args, "model_id"))
		if err != nil {
			return nil, err
		}
		return doc, nil

	case "list_templates":
		return map[string]interface{}{"templates": s.api.ListTemplates()}, nil

	case "load_template":
		id, err := s.api.LoadTemplate(getString(args, "name"))
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"model_id": id}, nil

	case "add_stream":
		var st model.Stream
		if err := decodeArg(args, "stream", &st); err != nil {
			return nil, err
		}
		if err := s.api.AddStream(getString(args, "model_id"), st); err != nil {
			return nil, err
		}
		return map[string]interface{}{"ok": true}, nil

	case "update_stream":
		var st model.Stream
		if err := decodeArg(args, "stream", &st); err != nil {
			return nil, err
		}
		if err := s.api.UpdateStream(getString(args, "model_id"), getString(args, "stream_id"), st); err != nil {
			return nil, err
		}
		return map[string]interface{}{"ok": true}, nil

	case "remove_stream":
		if err := s.api.RemoveStream(getString(args, "model_id"), getString(args, "stream_id")); err != nil {
			return nil, err
		}
		return map[string]interface{}{"ok": true}, nil

	case "run_deterministic":
		return s.api.RunDeterministic(getString(args, "model_id"))

	case "run_monte_carlo":
		return s.api.RunMonteCarlo(getString(args, "model_id"), getInt(args, "n_simulations", 0), int64(getInt(args, "seed", 1)))

	case "run_sensitivity":
		return s.api.RunSensitivity(getString(args, "model_id"))

	case "enumerate_breakeven_parameters":
		return s.api.EnumerateBreakevenParameters(getString(args, "model_id"))

	case "run_breakeven":
		return s.api.RunBreakeven(getString(args, "model_id"), driver.BreakevenRequest{
			ParameterName: getString(args, "parameter_name"),
			TargetNPV:     getFloat(args, "target_npv", 0),
		})

	case "preview_distribution":
		var d distribution.Distribution
		if err := decodeArg(args, "distribution", &d); err != nil {
			return nil, err
		}
		var endMonth *int
		if v, ok := args["end_month"].(float64); ok {
			em := int(v)
			endMonth = &em
		}
		series, err := s.api.PreviewDistribution(PreviewRequest{
			Distribution: d,
			Horizon:      getInt(args, "horizon", 0),
			StartMonth:   getInt(args, "start_month", 0),
			EndMonth:     endMonth,
			Seed:         int64(getInt(args, "seed", 1)),
		})
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"points": series.Points()}, nil

	default:
		return nil, nil
	}
}

// decodeArg re-marshals one argument field through JSON into dst, letting
// the driver-facing types (model.Stream, model.Document,
// distribution.Distribution) reuse their own json tags as the tool schema
// instead of hand-writing a second decoder per type.
func decodeArg(args map[string]interface{}, key string, dst interface{}) error {
	raw, ok := args[key]
	if !ok {
		return &NotFoundError{Kind: "argument", ID: key}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func getString(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}

func getFloat(m map[string]interface{}, key string, def float64) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return def
}

func getInt(m map[string]interface{}, key string, def int) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return def
}
