package nlmserver

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/notebooks"
)

// AuthSetupInput configures the interactive login flow.
type AuthSetupInput struct {
	Headless       bool `json:"headless,omitempty" jsonschema:"Run the browser headless (only works when the profile is already valid)"`
	TimeoutMinutes int  `json:"timeout_minutes,omitempty" jsonschema:"How long to wait for manual login (default from config)"`
	Reauth         bool `json:"reauth,omitempty" jsonschema:"Clear stored auth first and start fresh"`
}

// AuthSetupOutput reports the setup outcome.
type AuthSetupOutput struct {
	Authenticated bool   `json:"authenticated"`
	StateFile     string `json:"state_file"`
}

// AuthValidateOutput reports whether stored auth still works.
type AuthValidateOutput struct {
	Valid bool `json:"valid"`
}

// AuthClearOutput confirms auth data removal.
type AuthClearOutput struct {
	Cleared bool `json:"cleared"`
}

func registerAuthTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "auth_status",
		Description: "Report stored NotebookLM authentication: whether state exists, its age, cookie count and last login time. Does not open a browser.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, notebooks.AuthStatus, error) {
		auth, err := authManager()
		if err != nil {
			return nil, notebooks.AuthStatus{}, err
		}
		return nil, auth.Status(), nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "auth_setup",
		Description: "Run the interactive Google login: opens NotebookLM in a browser, waits for the login to complete, then persists cookies and profile for later headless use.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input AuthSetupInput) (*mcp.CallToolResult, AuthSetupOutput, error) {
		auth, err := authManager()
		if err != nil {
			return nil, AuthSetupOutput{}, err
		}

		timeout := engine.Cfg.LoginTimeout
		if input.TimeoutMinutes > 0 {
			timeout = time.Duration(input.TimeoutMinutes) * time.Minute
		}

		if input.Reauth {
			err = auth.Reauth(input.Headless, timeout)
		} else {
			err = auth.Setup(input.Headless, timeout)
		}
		if err != nil {
			return nil, AuthSetupOutput{}, err
		}
		return nil, AuthSetupOutput{Authenticated: true, StateFile: auth.StateFile()}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "auth_validate",
		Description: "Open NotebookLM headless with the stored state and verify it is not redirected to the Google login page.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, AuthValidateOutput, error) {
		auth, err := authManager()
		if err != nil {
			return nil, AuthValidateOutput{}, err
		}
		ok, err := auth.Validate()
		if err != nil {
			return nil, AuthValidateOutput{}, err
		}
		return nil, AuthValidateOutput{Valid: ok}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "auth_clear",
		Description: "Delete all stored authentication: cookies, state file and the persistent browser profile.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, AuthClearOutput, error) {
		auth, err := authManager()
		if err != nil {
			return nil, AuthClearOutput{}, err
		}
		if err := auth.Clear(); err != nil {
			return nil, AuthClearOutput{}, err
		}
		return nil, AuthClearOutput{Cleared: true}, nil
	})
}
