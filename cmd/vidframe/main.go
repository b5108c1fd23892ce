package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/1broseidon/vidframe/internal/config"
	"github.com/1broseidon/vidframe/internal/daemon"
	"github.com/1broseidon/vidframe/internal/ipc"
	"github.com/1broseidon/vidframe/internal/platform"
	"github.com/1broseidon/vidframe/internal/runtimepath"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "mode":
		os.Exit(runMode(os.Args[2:]))
	case "video":
		os.Exit(runVideo(os.Args[2:]))
	case "opened":
		os.Exit(runWindowCommand("opened", os.Args[2:], func(c *ipc.Client, id uint32) error { return c.FileOpened(id) }))
	case "commit":
		os.Exit(runWindowCommand("commit", os.Args[2:], func(c *ipc.Client, id uint32) error { return c.Commit(id) }))
	case "resize":
		os.Exit(runResize(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "fit":
		os.Exit(runFit(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: vidframe <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the vidframe daemon (foreground)")
	fmt.Fprintln(w, "  status              Show attached player windows")
	fmt.Fprintln(w, "  displays            List displays")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mode <mode>         Transition a window to a layout mode")
	fmt.Fprintln(w, "  video <WxH>         Report a decoded video size")
	fmt.Fprintln(w, "  opened              Mark that a new file was opened")
	fmt.Fprintln(w, "  resize <WxH>        Resize a window")
	fmt.Fprintln(w, "  commit              Persist the current window geometry")
	fmt.Fprintln(w, "  fit <WxH>           Preview where a video would be placed")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config path         Print the config file path")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'vidframe <command> --help' for command-specific options.")
}

// newLogger builds the daemon's slog handler for a config log level.
func newLogger(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/vidframe/config.yaml)")
	display := fs.String("display", "", "X display (default: config display, then $DISPLAY)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: vidframe daemon [--path PATH] [--display DISPLAY]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Attach to player windows and manage their layout. SIGHUP reloads the config.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	cfg := res.Config
	logger := newLogger(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)
	log.Printf("Configuration loaded (window class: %s, %d files)", cfg.Daemon.WindowClass, len(res.Files))

	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
	if *display == "" {
		*display = cfg.Display
	}

	backend, err := platform.NewLinuxBackendFromDisplay(*display)
	if err != nil {
		log.Printf("Failed to connect to display: %v", err)
		return 1
	}
	defer backend.Disconnect()

	pidPath, err := writePIDFile()
	if err != nil {
		log.Printf("Warning: %v", err)
	} else {
		defer os.Remove(pidPath)
	}

	d, err := daemon.New(daemon.Options{
		Config:     cfg,
		ConfigPath: *path,
		Backend:    backend,
		Logger:     logger,
	})
	if err != nil {
		log.Printf("Failed to create daemon: %v", err)
		return 1
	}

	ipcServer, err := ipc.NewServer(d)
	if err != nil {
		log.Printf("Failed to create IPC server: %v", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		log.Printf("Failed to start IPC server: %v", err)
		return 1
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					log.Println("Received SIGHUP, reloading config...")
					if _, err := d.Reload(); err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}
					log.Println("Config reloaded successfully")
					continue
				}
				log.Println("Shutting down vidframe daemon...")
				cancel()
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	// X events are dispatched on their own goroutine; the daemon posts
	// everything that touches a controller onto its main loop.
	go backend.EventLoop()
	defer backend.Quit()

	log.Println("vidframe daemon started successfully")
	if err := d.Run(ctx); err != nil {
		log.Printf("Daemon error: %v", err)
		return 1
	}
	return 0
}

func writePIDFile() (string, error) {
	path, err := runtimepath.PIDPath()
	if err != nil {
		return "", fmt.Errorf("failed to resolve pid file: %w", err)
	}
	if data, err := os.ReadFile(path); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && processAlive(pid) {
			return "", fmt.Errorf("another daemon may be running (pid %d)", pid)
		}
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0600); err != nil {
		return "", fmt.Errorf("failed to write pid file: %w", err)
	}
	return path, nil
}

func processAlive(pid int) bool {
	if pid <= 0 || pid == os.Getpid() {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: vidframe reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to re-read its configuration.")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
