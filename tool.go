package gonewton

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ============================================================
// Tool-call interface
// ============================================================

// ToolRequest is a JSON tool invocation, for agents and scripted clients.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

// ToolResponse carries a tool result or an error message.
type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall runs req through DefaultCalculator.
func HandleToolCall(req ToolRequest) ToolResponse {
	return defaultCalculator.HandleToolCall(req)
}

// HandleToolCall dispatches one tool invocation. Failures are reported in
// ToolResponse.Error; it never panics on malformed params.
func (c *Calculator) HandleToolCall(req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	// getFunction reads the "function" param under the calculator's length cap.
	getFunction := func() (string, error) {
		src, err := getString("function")
		if err != nil {
			return "", err
		}
		return src, c.checkLength(src)
	}
	getNumber := func(key string) NumberField {
		switch v := req.Params[key].(type) {
		case float64:
			return Number(v)
		case string:
			return Text(v)
		case json.Number:
			return Text(v.String())
		case nil:
			return NumberField{}
		default:
			return Text(fmt.Sprint(v))
		}
	}

	switch req.Tool {
	case "newton_raphson":
		fn, err := getString("function")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		resp, err := c.Calculate(Request{Function: fn, X0: getNumber("x0"), Epsilon: getNumber("epsilon")})
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{
			Result: resp,
			LaTeX:  resp.FunctionLaTeX,
			String: strconv.FormatFloat(float64(resp.Solution), 'g', -1, 64),
		}

	case "differentiate":
		src, err := getFunction()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		fn, err := Compile(src)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{
			Result: map[string]string{"function": fn.Expr.String(), "derivative": fn.Derivative.String()},
			LaTeX:  fn.DerivativeLaTeX,
			String: fn.Derivative.String(),
		}

	case "latex":
		src, err := getFunction()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		e, err := Parse(src)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: e.String(), LaTeX: e.LaTeX(), String: e.String()}

	case "whitelist":
		return ToolResponse{Result: Whitelist()}

	case "tool_spec":
		var spec interface{}
		_ = json.Unmarshal([]byte(ToolSpec()), &spec)
		return ToolResponse{Result: spec}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolSpec returns the JSON schema of every tool HandleToolCall accepts.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("newton_raphson", "Find a real root of f(x) from x0. Optional: epsilon (default 0.001, minimum 1e-10)",
			[]string{"function", "x0"},
			map[string]string{"function": "string", "x0": "number", "epsilon": "number"}),
		ts("differentiate", "First derivative d/dx of f(x)", []string{"function"}, map[string]string{"function": "string"}),
		ts("latex", "Parse f(x) and render it as LaTeX", []string{"function"}, map[string]string{"function": "string"}),
		ts("whitelist", "List the identifiers accepted in expressions", []string{}, map[string]string{}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
