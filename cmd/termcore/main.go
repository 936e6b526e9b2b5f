package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/GriffinCanCode/termcore/internal/infrastructure/config"
	"github.com/GriffinCanCode/termcore/internal/infrastructure/logging"
	"github.com/GriffinCanCode/termcore/internal/providers/terminal"
)

var (
	errorf  = color.New(color.FgRed).FprintfFunc()
	infof   = color.New(color.FgBlue).FprintfFunc()
	promptf = color.New(color.FgGreen, color.Bold).FprintfFunc()
)

func main() {
	cfg, verbose, err := parseConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		errorf(os.Stderr, "[!] Error: %s\n", err)
		os.Exit(2)
	}

	os.Exit(run(cfg, os.Stdin, os.Stdout, verbose))
}

// parseConfig loads the environment, then applies command-line overrides.
// An invalid variable is an error rather than a silent fallback to defaults.
func parseConfig(args []string) (*config.Config, bool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, false, err
	}

	fs := flag.NewFlagSet("termcore", flag.ContinueOnError)
	fs.StringVar(&cfg.Terminal.Shell, "shell", cfg.Terminal.Shell, "Shell executable")
	fs.StringVar(&cfg.Terminal.ReadMode, "read-mode", cfg.Terminal.ReadMode, "Passthrough read mode (single|quiesce)")
	fs.DurationVar(&cfg.Terminal.ReadTimeout, "timeout", cfg.Terminal.ReadTimeout, "Read timeout (0 waits forever)")
	fs.StringVar(&cfg.Terminal.BuiltinsFile, "builtins", cfg.Terminal.BuiltinsFile, "YAML or TOML file overriding builtin texts")
	verbose := fs.Bool("v", false, "Log session events to stderr")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, *verbose, nil
}

func run(cfg *config.Config, in *os.File, out io.Writer, verbose bool) int {
	opts, err := cfg.TerminalOptions()
	if err != nil {
		errorf(os.Stderr, "[!] Error: %s\n", err)
		return 1
	}

	logger := logging.NewNop()
	if verbose {
		logger = logging.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()
	opts.Logger = logger.Component("terminal")

	session, err := terminal.Open(opts)
	if err != nil {
		errorf(os.Stderr, "[!] Error: %s\n", err)
		return 1
	}
	defer session.Close()

	interactive := term.IsTerminal(int(in.Fd()))
	if interactive {
		infof(os.Stderr, "[+] Session %s (%s), type exit to quit\n", session.ID(), opts.Shell)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		if interactive {
			promptf(out, "termcore> ")
		}

		var line string
		select {
		case <-ctx.Done():
			return 130
		case <-session.Done():
			logger.Info("Shell exited", zap.NamedError("exit", session.Err()))
			return 0
		case l, ok := <-lines:
			if !ok {
				return 0
			}
			line = l
		}

		if line == "exit" || line == "quit" {
			return 0
		}

		start := time.Now()
		output := session.ExecuteContext(ctx, line)
		switch output {
		case terminal.FailureMessage, terminal.InvalidSessionMessage:
			errorf(out, "%s\n", output)
		case "":
		default:
			fmt.Fprint(out, output)
			if output[len(output)-1] != '\n' {
				fmt.Fprintln(out)
			}
		}
		logger.Debug("Executed", zap.String("line", line), zap.Duration("took", time.Since(start)))
	}
}
