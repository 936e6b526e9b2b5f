package system

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/GriffinCanCode/termcore/internal/types"
)

// DefaultShellsFile lists the login shells installed on the host.
const DefaultShellsFile = "/etc/shells"

// Provider reports host facts that help pick a shell for a session
type Provider struct {
	startTime    time.Time
	defaultShell string
	shellsFile   string
}

// NewProvider creates a system provider; defaultShell is what new sessions use
func NewProvider(defaultShell string) *Provider {
	return &Provider{
		startTime:    time.Now(),
		defaultShell: defaultShell,
		shellsFile:   DefaultShellsFile,
	}
}

// Definition returns service metadata
func (s *Provider) Definition() types.Service {
	return types.Service{
		ID:          "system",
		Name:        "System Service",
		Description: "Host information and shell discovery",
		Category:    types.CategorySystem,
		Capabilities: []string{
			"info",
			"shells",
		},
		Tools: []types.Tool{
			{
				ID:          "system.info",
				Name:        "System Info",
				Description: "Get host and runtime information",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "system.shells",
				Name:        "List Shells",
				Description: "List installed shells that can back a session",
				Parameters:  []types.Parameter{},
				Returns:     "array",
			},
			{
				ID:          "system.ping",
				Name:        "Ping",
				Description: "Test service availability",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
		},
	}
}

// Execute runs a system operation
func (s *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "system.info":
		return s.info()
	case "system.shells":
		return s.shells()
	case "system.ping":
		return success(map[string]interface{}{
			"pong":      true,
			"timestamp": time.Now().Unix(),
		})
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (s *Provider) info() (*types.Result, error) {
	hostname, _ := os.Hostname()

	return success(map[string]interface{}{
		"hostname":       hostname,
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
		"go_version":     runtime.Version(),
		"cpus":           runtime.NumCPU(),
		"goroutines":     runtime.NumGoroutine(),
		"default_shell":  s.defaultShell,
		"uptime_seconds": time.Since(s.startTime).Seconds(),
	})
}

// Shell is one entry of the shells listing
type Shell struct {
	Path       string `json:"path"`
	Executable bool   `json:"executable"`
	Default    bool   `json:"default"`
}

func (s *Provider) shells() (*types.Result, error) {
	paths, err := readShells(s.shellsFile)
	if err != nil {
		// Hosts without the file still have the default shell
		paths = nil
	}
	if !contains(paths, s.defaultShell) && s.defaultShell != "" {
		paths = append([]string{s.defaultShell}, paths...)
	}

	shells := make([]Shell, 0, len(paths))
	for _, p := range paths {
		_, lookErr := exec.LookPath(p)
		shells = append(shells, Shell{
			Path:       p,
			Executable: lookErr == nil,
			Default:    p == s.defaultShell,
		})
	}

	return success(map[string]interface{}{
		"shells": shells,
		"count":  len(shells),
	})
}

// readShells parses an /etc/shells style file: one path per line, # comments
func readShells(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !contains(paths, line) {
			paths = append(paths, line)
		}
	}
	return paths, scanner.Err()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}
