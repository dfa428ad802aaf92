package gonewton_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/njchilds90/gonewton"
)

// ============================================================
// Tool-call interface tests
// ============================================================

func TestToolCall_NewtonRaphson(t *testing.T) {
	resp := gonewton.HandleToolCall(gonewton.ToolRequest{
		Tool:   "newton_raphson",
		Params: map[string]interface{}{"function": "x^2 - 2", "x0": 1.0, "epsilon": "1e-9"},
	})
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	if !strings.HasPrefix(resp.String, "1.41421356") {
		t.Errorf("want sqrt(2), got %s", resp.String)
	}
	if resp.LaTeX != "x^{2} - 2" {
		t.Errorf("got latex %s", resp.LaTeX)
	}
}

func TestToolCall_NewtonRaphsonFailure(t *testing.T) {
	resp := gonewton.HandleToolCall(gonewton.ToolRequest{
		Tool:   "newton_raphson",
		Params: map[string]interface{}{"function": "x^2 + 1", "x0": 0.0},
	})
	if resp.Error != "derivative too small at x = 0" {
		t.Errorf("got %q", resp.Error)
	}
}

func TestToolCall_Differentiate(t *testing.T) {
	resp := gonewton.HandleToolCall(gonewton.ToolRequest{
		Tool:   "differentiate",
		Params: map[string]interface{}{"function": "x^3"},
	})
	if resp.String != "3*x^2" || resp.LaTeX != "3 x^{2}" {
		t.Errorf("got %q / %q", resp.String, resp.LaTeX)
	}
}

func TestToolCall_LaTeX(t *testing.T) {
	resp := gonewton.HandleToolCall(gonewton.ToolRequest{
		Tool:   "latex",
		Params: map[string]interface{}{"function": "sqrt(x)"},
	})
	if resp.LaTeX != `\sqrt{x}` {
		t.Errorf("got %s", resp.LaTeX)
	}
}

func TestToolCall_Errors(t *testing.T) {
	cases := []struct {
		req  gonewton.ToolRequest
		want string
	}{
		{gonewton.ToolRequest{Tool: "integrate"}, "unknown tool: integrate"},
		{gonewton.ToolRequest{Tool: "differentiate", Params: map[string]interface{}{}}, "missing param: function"},
		{gonewton.ToolRequest{Tool: "latex", Params: map[string]interface{}{"function": 3.0}}, "param function must be a string"},
		{gonewton.ToolRequest{Tool: "latex", Params: map[string]interface{}{"function": "q"}}, `unknown identifier "q"`},
	}
	for _, c := range cases {
		resp := gonewton.HandleToolCall(c.req)
		if !strings.Contains(resp.Error, c.want) {
			t.Errorf("%s: want error containing %q, got %q", c.req.Tool, c.want, resp.Error)
		}
	}
}

func TestToolCall_FunctionLengthCap(t *testing.T) {
	c := gonewton.NewCalculator(gonewton.WithMaxFunctionLength(8))
	long := "x + x + x + x"
	for _, tool := range []string{"newton_raphson", "differentiate", "latex"} {
		resp := c.HandleToolCall(gonewton.ToolRequest{
			Tool:   tool,
			Params: map[string]interface{}{"function": long, "x0": 1.0},
		})
		if !strings.Contains(resp.Error, "function expression is too long (limit 8 characters)") {
			t.Errorf("%s: got %q", tool, resp.Error)
		}
	}
	resp := c.HandleToolCall(gonewton.ToolRequest{
		Tool:   "differentiate",
		Params: map[string]interface{}{"function": "x^3"},
	})
	if resp.Error != "" || resp.String != "3*x^2" {
		t.Errorf("short input under the cap: %+v", resp)
	}
}

func TestToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal([]byte(gonewton.ToolSpec()), &spec); err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(spec.Tools))
	for i, tool := range spec.Tools {
		names[i] = tool.Name
	}
	if strings.Join(names, ",") != "newton_raphson,differentiate,latex,whitelist,tool_spec" {
		t.Errorf("got %v", names)
	}
	resp := gonewton.HandleToolCall(gonewton.ToolRequest{Tool: "tool_spec"})
	if resp.Result == nil || resp.Error != "" {
		t.Errorf("tool_spec: %+v", resp)
	}
}
