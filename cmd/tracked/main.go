package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tracked"
	"tracked/internal/cli"
	"tracked/internal/config"
	"tracked/internal/logging"
	"tracked/internal/version"
)

const programName = "tracked"

const (
	exitOK     = 0
	exitUsage  = 1
	exitConfig = 2
	exitRun    = 3
)

type Options struct {
	ConfigPath   string
	ResourcesDir string
	Frames       int64
	Tick         time.Duration
	LogLevel     string
	Metrics      bool
	ShowVersion  bool

	visited map[string]bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	return runWithDeps(args, out, errOut, appDeps{LogOut: errOut}, installSignals)
}

// installSignals routes SIGINT and SIGTERM into cancel until the returned
// func is called.
func installSignals(logger *logging.Logger, cancel context.CancelFunc) func() {
	signalCh := make(chan os.Signal, 2)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	stopWatching := watchShutdownSignals(logger, cancel, signalCh)
	return func() {
		signal.Stop(signalCh)
		stopWatching()
	}
}

func runWithDeps(args []string, out, errOut io.Writer, deps appDeps, signals func(*logging.Logger, context.CancelFunc) func()) int {
	options, err := parseArgs(args, errOut)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if options.ShowVersion {
		fmt.Fprintln(out, version.Get().Banner(programName))
		return exitOK
	}

	envOverrides, err := config.LoadEnvOverrides()
	if err != nil {
		fmt.Fprintf(errOut, "%v\n", err)
		return exitConfig
	}
	configPath := options.ConfigPath
	if configPath == "" {
		configPath = strings.TrimSpace(envOverrides.ConfigPath)
	}
	overrides := envOverrides.Map()
	for key, value := range options.overrides() {
		overrides[key] = value
	}

	if deps.Defaults == nil {
		deps.Defaults, err = tracked.EmbeddedConfigFS.ReadFile(config.DefaultsPath)
		if err != nil {
			fmt.Fprintf(errOut, "read embedded defaults: %v\n", err)
			return exitConfig
		}
	}
	settings, err := config.LoadSettings(configPath, deps.Defaults, overrides)
	if err != nil {
		fmt.Fprintf(errOut, "load settings: %v\n", err)
		return exitConfig
	}

	app, err := newApplication(settings, configPath, overrides, deps)
	if err != nil {
		fmt.Fprintf(errOut, "start: %v\n", err)
		return exitRun
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if signals != nil {
		stop := signals(app.logger, cancel)
		defer stop()
	}

	runErr := app.Run(ctx)
	closeErr := app.Close()
	if options.Metrics {
		if err := app.metrics.WritePrometheus(out); err != nil {
			fmt.Fprintf(errOut, "write metrics: %v\n", err)
		}
	}
	if runErr != nil {
		fmt.Fprintf(errOut, "run: %v\n", runErr)
		return exitRun
	}
	if closeErr != nil {
		fmt.Fprintf(errOut, "shutdown: %v\n", closeErr)
		return exitRun
	}
	return exitOK
}

func parseArgs(args []string, errOut io.Writer) (Options, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errOut)
	options := Options{}
	fs.StringVar(&options.ConfigPath, "config", "", "Settings file (env: TRACKED_CONFIG)")
	fs.StringVar(&options.ResourcesDir, "resources", "", "Resources directory (env: TRACKED_RESOURCES_DIR)")
	fs.Int64Var(&options.Frames, "frames", 0, "Stop after this many frames, 0 runs until interrupted (env: TRACKED_FRAMES)")
	fs.DurationVar(&options.Tick, "tick", 0, "Frame interval (env: TRACKED_TICK)")
	fs.StringVar(&options.LogLevel, "log-level", "", "Log level: debug, info, warning, error (env: TRACKED_LOG_LEVEL)")
	fs.BoolVar(&options.Metrics, "metrics", false, "Print metrics in Prometheus text format on exit")
	helpVersion := cli.AddHelpVersionFlags(fs, "Show this help message", "")
	fs.Usage = func() {
		printHelp(fs)
	}

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	if helpVersion.Help {
		fs.Usage()
		return Options{}, flag.ErrHelp
	}
	if helpVersion.Version {
		return Options{ShowVersion: true}, nil
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return Options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if options.Frames < 0 {
		fmt.Fprintln(errOut, "-frames must not be negative")
		return Options{}, fmt.Errorf("invalid frames %d", options.Frames)
	}
	if options.LogLevel != "" {
		if _, ok := logging.ParseLevel(options.LogLevel); !ok {
			fmt.Fprintf(errOut, "unknown log level %q\n", options.LogLevel)
			return Options{}, fmt.Errorf("invalid log level %q", options.LogLevel)
		}
	}
	options.ConfigPath = strings.TrimSpace(options.ConfigPath)
	options.visited = cli.Visited(fs)
	return options, nil
}

// overrides returns the settings given explicitly on the command line.
func (o Options) overrides() map[string]any {
	values := map[string]any{}
	if o.visited["resources"] && strings.TrimSpace(o.ResourcesDir) != "" {
		values["resources.dir"] = strings.TrimSpace(o.ResourcesDir)
	}
	if o.visited["frames"] {
		values["frame.frames"] = o.Frames
	}
	if o.visited["tick"] && o.Tick > 0 {
		values["frame.tick"] = o.Tick
	}
	if o.visited["log-level"] && o.LogLevel != "" {
		values["log.level"] = o.LogLevel
	}
	return values
}

func printHelp(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "Usage: tracked [options]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Walk a unit along resources/route.yaml with a tracking camera.")
	fmt.Fprintln(out, "Resource and settings files are reloaded while running.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Options:")
	fs.PrintDefaults()
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Exit codes:")
	fmt.Fprintln(out, "  0  Success")
	fmt.Fprintln(out, "  1  Usage error")
	fmt.Fprintln(out, "  2  Settings error")
	fmt.Fprintln(out, "  3  Run error")
}
