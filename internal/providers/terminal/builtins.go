package terminal

import "fmt"

// Builtin command names.
const (
	CommandOmni      = "omni"
	CommandGitHubFix = "gh-fix"
	CommandDev       = "dev"
	CommandSys       = "sys"
)

// RegisterBuiltins registers the default builtin commands using the given texts.
func RegisterBuiltins(r *Registry, msgs Messages) error {
	builtins := []struct {
		name    string
		handler Handler
	}{
		{CommandOmni, omniCommand{msgs: msgs}},
		{CommandGitHubFix, fixed(msgs.GitHubFix)},
		{CommandDev, fixed(msgs.DevEnvironment)},
		{CommandSys, fixed(msgs.SystemStatus)},
	}

	for _, b := range builtins {
		if err := r.Register(b.name, b.handler); err != nil {
			return fmt.Errorf("register builtin %s: %w", b.name, err)
		}
	}
	return nil
}

// fixed returns a handler that ignores its arguments
func fixed(text string) HandlerFunc {
	return func([]string) string {
		return text
	}
}

// omniCommand dispatches on its first argument (the sub-action).
type omniCommand struct {
	msgs Messages
}

func (o omniCommand) Handle(args []string) string {
	if len(args) == 0 {
		return o.msgs.OmniUsage
	}

	switch args[0] {
	case "fix":
		if len(args) > 1 {
			switch args[1] {
			case "403":
				return o.msgs.OmniFix403
			case "deps":
				return o.msgs.OmniFixDeps
			}
		}
	case "dev":
		return o.msgs.OmniDev
	case "sys":
		return o.msgs.OmniSys
	}

	return o.msgs.OmniDefault
}
