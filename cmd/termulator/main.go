package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mainbong/termulator/internal/config"
	"github.com/mainbong/termulator/internal/logger"
	"github.com/mainbong/termulator/internal/session"
	"github.com/mainbong/termulator/internal/shell"
	"github.com/mainbong/termulator/internal/terminal"
)

const version = "termulator v0.1.0"

var (
	cfg      *config.Config
	runner   *shell.Runner
	devMode  bool
	noTUI    bool
	startDir string
)

var rootCmd = &cobra.Command{
	Use:   "termulator",
	Short: "A POSIX-like command interpreter",
	Long:  "termulator runs an interactive shell session with built-in file, text and process commands and falls back to programs found on PATH.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
	RunE: runREPL,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

var execCmd = &cobra.Command{
	Use:   "exec [command line]",
	Short: "Run one command line and exit with its code",
	Example: `  termulator exec pwd
  termulator exec -- ls -la
  termulator exec "echo hello > out.txt"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sess, err := newSession()
		if err != nil {
			color.Red("failed to start session: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		code, output := sess.RunCommandContext(ctx, commandLine(args))
		stop()

		terminal.NewPrinter(os.Stdout, cfg.Color && terminal.HasTTY()).Result(code, output)
		logger.Close()
		os.Exit(code)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage settings",
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active config",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := cfg.Marshal()
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		fmt.Printf("# %s\n%s\n", cfg.Path(), strings.TrimRight(string(data), "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "write log files to the current directory")
	rootCmd.PersistentFlags().StringVarP(&startDir, "dir", "C", "", "start the session in this directory")
	rootCmd.Flags().BoolVar(&noTUI, "no-tui", false, "use the plain line interface even on a terminal")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// commandLine rebuilds the line for exec. A single argument is taken as the
// whole line; otherwise words the host shell already split are re-quoted so
// the tokenizer sees the same words.
func commandLine(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	words := make([]string, len(args))
	for i, arg := range args {
		words[i] = quoteWord(arg)
	}
	return strings.Join(words, " ")
}

func quoteWord(word string) string {
	if word == "" {
		return "''"
	}
	if !strings.ContainsAny(word, " \t\n'\"\\") {
		return word
	}
	return "'" + strings.ReplaceAll(word, "'", `'"'"'`) + "'"
}

// setup loads the configuration and starts the logger
func setup() error {
	var err error

	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Determine log directory based on dev mode
	logDir := cfg.LogDir
	if devMode {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine current directory: %w", err)
		}
		logDir = cwd
		fmt.Printf("[dev] writing logs to %s\n", logDir)
	}

	if err := logger.Init(logDir, logger.ParseLevel(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if !cfg.Color || !terminal.HasTTY() {
		color.NoColor = true
	}

	runner = shell.NewRunner()
	runner.SetTimeout(cfg.ExecTimeoutDuration())

	logger.Info("termulator starting (config %s)", cfg.Path())
	return nil
}

func newSession(opts ...session.Option) (*session.Session, error) {
	base := []session.Option{
		session.WithRunner(runner),
		session.WithTopInterval(cfg.TopIntervalDuration()),
		session.WithHostEnvMirror(cfg.MirrorEnv),
	}
	if startDir != "" {
		base = append(base, session.WithDirectory(startDir))
	}
	sess, err := session.New(append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	logger.Info("session %s started in %s", sess.ID(), sess.CurrentDirectory())
	return sess, nil
}

// applyConfig takes over the settings that can change while a session runs
func applyConfig(updated *config.Config) {
	logger.SetLevel(logger.ParseLevel(updated.LogLevel))
	runner.SetTimeout(updated.ExecTimeoutDuration())
	logger.Info("applied log_level=%s exec_timeout=%s", updated.LogLevel, updated.ExecTimeoutDuration())
}

func useTUI() bool {
	if noTUI {
		return false
	}
	switch cfg.TUI {
	case "on":
		return true
	case "off":
		return false
	default:
		return terminal.HasTTY()
	}
}

func runREPL(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if useTUI() {
		logger.DisableConsole()
		return runTUI(ctx)
	}

	sess, err := newSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	go func() {
		if err := cfg.Watch(ctx, applyConfig); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("config watcher stopped: %v", err)
		}
	}()

	return runLineMode(ctx, sess, os.Stdin, terminal.NewPrinter(os.Stdout, !color.NoColor))
}

// runLineMode reads one command per line until exit or end of input. Ctrl+C
// interrupts the running command, or starts a fresh prompt when idle.
func runLineMode(ctx context.Context, sess *session.Session, in io.Reader, printer *terminal.Printer) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()

	var cancelMu sync.Mutex
	var currentCancel context.CancelFunc
	idlePrompt := sess.DisplayPrompt()

	go func() {
		for sig := range sigChan {
			cancelMu.Lock()
			cancel := currentCancel
			prompt := idlePrompt
			cancelMu.Unlock()

			if sig == syscall.SIGTERM {
				logger.Info("session %s terminated by signal", sess.ID())
				logger.Close()
				os.Exit(143)
			}
			if cancel != nil {
				cancel()
				continue
			}
			fmt.Println()
			printer.Prompt(prompt)
		}
	}()

	reader := bufio.NewReader(in)
	for sess.IsRunning() {
		printer.Prompt(sess.DisplayPrompt())

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", err)
		}
		atEOF := errors.Is(err, io.EOF)
		line = strings.TrimRight(line, "\r\n")

		if line != "" {
			taskCtx, taskCancel := context.WithCancel(ctx)
			cancelMu.Lock()
			currentCancel = taskCancel
			cancelMu.Unlock()

			code, output := sess.RunCommandContext(taskCtx, line)
			printer.Result(code, output)

			taskCancel()
			cancelMu.Lock()
			currentCancel = nil
			idlePrompt = sess.DisplayPrompt()
			cancelMu.Unlock()
		}

		if atEOF {
			fmt.Println()
			break
		}
	}

	logger.Info("session %s ended after %d commands", sess.ID(), len(sess.History()))
	return nil
}
