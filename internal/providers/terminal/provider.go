package terminal

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/termcore/internal/types"
)

// Provider implements terminal operations as service tools
type Provider struct {
	manager *Manager
}

// NewProvider creates a new terminal provider backed by manager
func NewProvider(manager *Manager) *Provider {
	return &Provider{
		manager: manager,
	}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "terminal",
		Name:        "Terminal Service",
		Description: "PTY-backed shell sessions with builtin command interception",
		Category:    types.CategorySystem,
		Capabilities: []string{
			"pty",
			"shell",
			"builtins",
			"sessions",
		},
		Tools: p.getTools(),
	}
}

// Execute routes to appropriate operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "terminal.create_session":
		return p.createSession(ctx, params)
	case "terminal.execute":
		return p.execute(ctx, params)
	case "terminal.list_sessions":
		return p.listSessions()
	case "terminal.get_session":
		return p.getSession(params)
	case "terminal.kill":
		return p.kill(params)
	default:
		return nil, fmt.Errorf("unknown tool: %s", toolID)
	}
}

func (p *Provider) getTools() []types.Tool {
	sessionID := types.Parameter{
		Name:        "session_id",
		Type:        "string",
		Description: "Terminal session ID",
		Required:    true,
	}

	return []types.Tool{
		{
			ID:          "terminal.create_session",
			Name:        "Create Terminal Session",
			Description: "Start a shell attached to a new PTY",
			Parameters: []types.Parameter{
				{
					Name:        "shell",
					Type:        "string",
					Description: "Shell to use. Defaults to the configured shell",
					Required:    false,
				},
				{
					Name:        "working_dir",
					Type:        "string",
					Description: "Initial working directory",
					Required:    false,
				},
				{
					Name:        "env",
					Type:        "object",
					Description: "Environment variables to set",
					Required:    false,
				},
			},
			Returns: "session_info",
		},
		{
			ID:          "terminal.execute",
			Name:        "Execute Command",
			Description: "Run a command line: builtins answer locally, anything else goes to the shell",
			Parameters: []types.Parameter{
				sessionID,
				{
					Name:        "command",
					Type:        "string",
					Description: "Command line to execute",
					Required:    true,
				},
			},
			Returns: "output",
		},
		{
			ID:          "terminal.list_sessions",
			Name:        "List Terminal Sessions",
			Description: "List all terminal sessions",
			Parameters:  []types.Parameter{},
			Returns:     "sessions_list",
		},
		{
			ID:          "terminal.get_session",
			Name:        "Get Session Info",
			Description: "Get information about a terminal session",
			Parameters:  []types.Parameter{sessionID},
			Returns:     "session_info",
		},
		{
			ID:          "terminal.kill",
			Name:        "Kill Terminal Session",
			Description: "Terminate a terminal session",
			Parameters:  []types.Parameter{sessionID},
			Returns:     "success",
		},
	}
}

func (p *Provider) createSession(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	var override Overrides
	override.Shell, _ = params["shell"].(string)
	override.WorkingDir, _ = params["working_dir"].(string)

	if envMap, ok := params["env"].(map[string]interface{}); ok {
		override.Env = make(map[string]string, len(envMap))
		for k, v := range envMap {
			if str, ok := v.(string); ok {
				override.Env[k] = str
			}
		}
	}

	info, err := p.manager.Create(ctx, override)
	if err != nil {
		return nil, err
	}

	return &types.Result{
		Success: true,
		Data:    sessionData(*info),
	}, nil
}

func (p *Provider) execute(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok {
		return nil, fmt.Errorf("session_id is required")
	}

	command, ok := params["command"].(string)
	if !ok {
		return nil, fmt.Errorf("command is required")
	}

	output := p.manager.Execute(ctx, sessionID, command)

	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"output": output,
			"length": len(output),
		},
	}, nil
}

func (p *Provider) listSessions() (*types.Result, error) {
	sessions := p.manager.List()

	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"sessions": sessions,
			"count":    len(sessions),
		},
	}, nil
}

func (p *Provider) getSession(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok {
		return nil, fmt.Errorf("session_id is required")
	}

	info, err := p.manager.Get(sessionID)
	if err != nil {
		return nil, err
	}

	return &types.Result{
		Success: true,
		Data:    sessionData(*info),
	}, nil
}

func (p *Provider) kill(params map[string]interface{}) (*types.Result, error) {
	sessionID, ok := params["session_id"].(string)
	if !ok {
		return nil, fmt.Errorf("session_id is required")
	}

	if err := p.manager.Destroy(sessionID); err != nil {
		return nil, err
	}

	return &types.Result{
		Success: true,
		Data:    map[string]interface{}{"success": true},
	}, nil
}

func sessionData(info SessionInfo) map[string]interface{} {
	return map[string]interface{}{
		"id":          info.ID,
		"shell":       info.Shell,
		"working_dir": info.WorkingDir,
		"pid":         info.PID,
		"read_mode":   string(info.ReadMode),
		"builtins":    info.Builtins,
		"started_at":  info.StartedAt,
		"active":      info.Active,
	}
}
