package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/vidframe/internal/config"
	"github.com/1broseidon/vidframe/internal/geometry"
	"github.com/1broseidon/vidframe/internal/ipc"
	"github.com/1broseidon/vidframe/internal/mcp"
	"gopkg.in/yaml.v3"
)

// parseFlags returns -1 when parsing succeeded, otherwise the exit code.
func parseFlags(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	return -1
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	window := fs.Uint("window", 0, "Window id (default: every attached window)")
	asJSON := fs.Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: vidframe status [--window ID] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the attached player windows via IPC.")
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus(uint32(*window))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if wantJSON(*asJSON) {
		if err := printJSON(os.Stdout, status); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("window_class:   %s\n", status.WindowClass)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	fmt.Printf("windows:        %d\n", len(status.Windows))
	if len(status.Windows) == 0 {
		return 0
	}
	fmt.Println()
	tw := newTable(os.Stdout)
	fmt.Fprintln(tw, "WINDOW\tMODE\tFRAME\tVIDEO\tASPECT\tBUSY\tTITLE")
	for _, w := range status.Windows {
		c := w.Controller
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.3f\t%v\t%s\n",
			w.WindowID, c.Spec, formatRect(c.Frame), formatRect(c.VideoRect), c.VideoAspect, c.Transitioning, w.Title)
	}
	tw.Flush()
	return 0
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: vidframe displays [--json]")
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	data, err := ipc.NewClient().GetDisplays()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if wantJSON(*asJSON) {
		if err := printJSON(os.Stdout, data); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	tw := newTable(os.Stdout)
	fmt.Fprintln(tw, "ID\tFRAME\tVISIBLE\tPRIMARY")
	for _, d := range data.Displays {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", d.ID, formatRect(&d.Frame), formatRect(&d.Visible), d.Primary)
	}
	tw.Flush()
	return 0
}

func runMode(args []string) int {
	fs := flag.NewFlagSet("mode", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	window := fs.Uint("window", 0, "Window id (default: lowest attached window)")
	tool := fs.String("tool", "", "Interactive tool: crop or free-select")
	legacy := fs.String("legacy", "", "Legacy (borderless) full screen: true or false (default: config)")
	topBar := fs.String("top-bar", "", "Top bar placement: inside or outside")
	bottomBar := fs.String("bottom-bar", "", "Bottom bar placement: inside or outside")
	osc := fs.String("osc", "", "OSC position: floating, top or bottom")
	playlist := fs.String("playlist", "", "Music mode playlist: show or hide")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: vidframe mode [options] <windowed|windowed-interactive|fullscreen|fullscreen-interactive|music>")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "mode requires exactly one mode")
		fs.Usage()
		return 2
	}

	p := ipc.ModePayload{
		WindowID:           uint32(*window),
		Mode:               fs.Arg(0),
		Tool:               *tool,
		TopBarPlacement:    *topBar,
		BottomBarPlacement: *bottomBar,
		OSCPosition:        *osc,
	}
	switch *legacy {
	case "":
	case "true", "false":
		v := *legacy == "true"
		p.Legacy = &v
	default:
		fmt.Fprintf(os.Stderr, "invalid --legacy %q\n", *legacy)
		return 2
	}
	switch *playlist {
	case "":
	case "show", "hide":
		v := *playlist == "show"
		p.MusicPlaylistVisible = &v
	default:
		fmt.Fprintf(os.Stderr, "invalid --playlist %q\n", *playlist)
		return 2
	}

	data, err := ipc.NewClient().RequestMode(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if data.Queued {
		fmt.Printf("%s (queued)\n", data.Spec)
	} else {
		fmt.Println(data.Spec)
	}
	return 0
}

func runVideo(args []string) int {
	fs := flag.NewFlagSet("video", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	window := fs.Uint("window", 0, "Window id (default: lowest attached window)")
	dar := fs.String("dar", "", "Display aspect as WxH, for anamorphic video")
	rotation := fs.Int("rotate", 0, "Rotation in degrees")
	scale := fs.Float64("scale", 0, "Current video scale factor")
	opened := fs.Bool("opened", false, "Mark a newly opened file first")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: vidframe video [options] <WIDTHxHEIGHT>")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	size, err := parseSize(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	p := ipc.VideoGeometryPayload{
		WindowID: uint32(*window),
		Width:    size.W,
		Height:   size.H,
		Rotation: *rotation,
		Scale:    *scale,
	}
	if *dar != "" {
		aspect, err := parseSize(*dar)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		p.DARWidth, p.DARHeight = aspect.W, aspect.H
	}

	client := ipc.NewClient()
	if *opened {
		if err := client.FileOpened(p.WindowID); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if err := client.ReportVideoGeometry(p); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// runWindowCommand runs a command that only takes --window.
func runWindowCommand(name string, args []string, call func(*ipc.Client, uint32) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	window := fs.Uint("window", 0, "Window id (default: lowest attached window)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vidframe %s [--window ID]\n", name)
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}
	if err := call(ipc.NewClient(), uint32(*window)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runResize(args []string) int {
	fs := flag.NewFlagSet("resize", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	window := fs.Uint("window", 0, "Window id (default: lowest attached window)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: vidframe resize [--window ID] <WIDTHxHEIGHT>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "The window takes the closest size its video aspect and screen allow.")
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	size, err := parseSize(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	data, err := ipc.NewClient().Resize(ipc.ResizePayload{WindowID: uint32(*window), Width: size.W, Height: size.H})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(data.Frame.String())
	return 0
}

func runFit(args []string) int {
	fs := flag.NewFlagSet("fit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/vidframe/config.yaml)")
	fit := fs.String("fit", "", "keep_inside, center_inside, scale_down or none (default: config)")
	viewport := fs.String("viewport", "", "Desired viewport as WxH (default: the video size)")
	display := fs.String("display", "", "Display id (default: primary)")
	asJSON := fs.Bool("json", false, "Print JSON (default when stdout is not a terminal)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: vidframe fit [options] <WIDTHxHEIGHT>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Preview the windowed frame for a video size. Uses the daemon's displays")
		fmt.Fprintln(os.Stderr, "when it is running and a 1920x1080 display otherwise.")
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	video, err := parseSize(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	in := mcp.FitPreviewInput{VideoWidth: video.W, VideoHeight: video.H, Fit: *fit, DisplayID: *display}
	if *viewport != "" {
		vp, err := parseSize(*viewport)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		in.Width, in.Height = vp.W, vp.H
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var screens geometry.Screens
	data, err := ipc.NewClient().GetDisplays()
	switch {
	case err == nil:
		screens = data.Screens()
	case !errors.Is(err, ipc.ErrDaemonUnavailable):
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	out, err := mcp.FitPreview(res.Config, screens, in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if wantJSON(*asJSON) {
		if err := printJSON(os.Stdout, out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	fmt.Printf("display: %s\n", out.DisplayID)
	fmt.Printf("fit:     %s\n", out.Fit)
	fmt.Printf("frame:   %s\n", out.Frame.String())
	fmt.Printf("video:   %s\n", out.VideoRect.Round().String())
	if out.Warning != "" {
		fmt.Printf("warning: %s\n", out.Warning)
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  vidframe config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  vidframe config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  vidframe config explain [--path PATH] <yaml.path>")
		fmt.Fprintln(os.Stderr, "  vidframe config path")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/vidframe/config.yaml)")
		if code := parseFlags(fs, args[1:]); code >= 0 {
			return code
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/vidframe/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if code := parseFlags(fs, args[1:]); code >= 0 {
			return code
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/vidframe/config.yaml)")
		if code := parseFlags(fs, args[1:]); code >= 0 {
			return code
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	case "path":
		path, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(path)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
