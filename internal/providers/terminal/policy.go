package terminal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Messages holds the texts returned by the builtin commands.
// A policy file may override any subset of them.
type Messages struct {
	OmniUsage      string `yaml:"omni_usage" toml:"omni_usage" json:"omni_usage"`
	OmniFix403     string `yaml:"omni_fix_403" toml:"omni_fix_403" json:"omni_fix_403"`
	OmniFixDeps    string `yaml:"omni_fix_deps" toml:"omni_fix_deps" json:"omni_fix_deps"`
	OmniDev        string `yaml:"omni_dev" toml:"omni_dev" json:"omni_dev"`
	OmniSys        string `yaml:"omni_sys" toml:"omni_sys" json:"omni_sys"`
	OmniDefault    string `yaml:"omni_default" toml:"omni_default" json:"omni_default"`
	GitHubFix      string `yaml:"gh_fix" toml:"gh_fix" json:"gh_fix"`
	DevEnvironment string `yaml:"dev" toml:"dev" json:"dev"`
	SystemStatus   string `yaml:"sys" toml:"sys" json:"sys"`
}

// DefaultMessages returns the stock builtin texts.
func DefaultMessages() Messages {
	return Messages{
		OmniUsage:      "Usage: omni [fix|dev|sys] <target>",
		OmniFix403:     "GitHub 403 permissions resolved via native HTTP client",
		OmniFixDeps:    "Package dependencies automatically resolved",
		OmniDev:        "Development environment configured",
		OmniSys:        "System diagnostics: All systems operational",
		OmniDefault:    "Omniscient command executed successfully",
		GitHubFix:      "GitHub integration active - repository access enabled",
		DevEnvironment: "Development environment configured with full system access",
		SystemStatus:   "System status: CPU optimal, Memory available, Network connected",
	}
}

// LoadMessages reads a YAML or TOML policy file and layers it over DefaultMessages.
func LoadMessages(path string) (Messages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Messages{}, fmt.Errorf("read builtin policy: %w", err)
	}
	return ParseMessages(data, filepath.Ext(path))
}

// ParseMessages decodes policy data in the format named by ext (".yaml", ".yml" or ".toml").
func ParseMessages(data []byte, ext string) (Messages, error) {
	var override Messages

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return Messages{}, fmt.Errorf("parse yaml policy: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &override); err != nil {
			return Messages{}, fmt.Errorf("parse toml policy: %w", err)
		}
	default:
		return Messages{}, fmt.Errorf("%w: %q", ErrUnsupportedPolicyFormat, ext)
	}

	return DefaultMessages().merge(override), nil
}

// merge returns m with every non-empty field of o applied on top
func (m Messages) merge(o Messages) Messages {
	pick := func(base, over string) string {
		if over != "" {
			return over
		}
		return base
	}

	return Messages{
		OmniUsage:      pick(m.OmniUsage, o.OmniUsage),
		OmniFix403:     pick(m.OmniFix403, o.OmniFix403),
		OmniFixDeps:    pick(m.OmniFixDeps, o.OmniFixDeps),
		OmniDev:        pick(m.OmniDev, o.OmniDev),
		OmniSys:        pick(m.OmniSys, o.OmniSys),
		OmniDefault:    pick(m.OmniDefault, o.OmniDefault),
		GitHubFix:      pick(m.GitHubFix, o.GitHubFix),
		DevEnvironment: pick(m.DevEnvironment, o.DevEnvironment),
		SystemStatus:   pick(m.SystemStatus, o.SystemStatus),
	}
}
