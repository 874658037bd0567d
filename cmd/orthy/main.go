package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/orthybt/orthy/internal/config"
	"github.com/orthybt/orthy/internal/notify"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs         *flag.FlagSet
	program    string
	config     *config.Config
	configPath string
	notifier   *notify.Notifier
	log        *slog.Logger
	stdout     io.Writer
	stderr     io.Writer

	themeName   string
	loadAlerts  bool
	copyAlerts  bool
	veryVerbose bool
	verbose     bool
	quiet       bool
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot(stdout, stderr io.Writer) *root {
	r := &root{
		fs:       flag.NewFlagSet("orthy", flag.ContinueOnError),
		program:  "orthy",
		notifier: notify.New(notify.LoadPreferences()),
		stdout:   stdout,
		stderr:   stderr,
	}
	r.fs.SetOutput(stderr)
	r.fs.StringVar(&configPathOverride, "config", configPathOverride, "configuration file (default: "+config.EnvPath+" or ~/.config/orthy/config.rc)")
	r.fs.StringVar(&r.themeName, "theme", "", "panel theme (default, dark, light or a file)")
	r.fs.BoolVar(&r.loadAlerts, "notify-load", false, "show a desktop notification when an image is loaded")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", false, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.veryVerbose, "vv", false, "debug logging, including every action")
	r.fs.BoolVar(&r.verbose, "v", false, "informational logging")
	r.fs.BoolVar(&r.quiet, "q", false, "only log errors")
	r.fs.Usage = usageFunc(r)
	return r
}

// levelFromFlags maps the verbosity flags in precedence order.
func levelFromFlags(vv, v, q bool) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// loadConfig resolves the configuration. Precedence: flags > env > file >
// defaults.
func (r *root) loadConfig() error {
	loader := config.NewLoader(version, configPathOverride)
	r.configPath = loader.GetConfigPath()
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config %s: %w", r.configPath, err)
	}
	r.setFlagOverrides(cfg)
	r.config = cfg
	return nil
}

func (r *root) setFlagOverrides(cfg *config.Config) {
	set := map[string]bool{}
	r.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["notify-load"] {
		cfg.Notify.Load = r.loadAlerts
	}
	if set["notify-copy"] {
		cfg.Notify.Copy = r.copyAlerts
	}
	if r.themeName != "" {
		cfg.Theme = r.themeName
	} else if env := strings.TrimSpace(os.Getenv("ORTHY_THEME")); env != "" {
		cfg.Theme = env
	}
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	r.log = slog.New(slog.NewTextHandler(r.stderr, &slog.HandlerOptions{
		Level: levelFromFlags(r.veryVerbose, r.verbose, r.quiet),
	}))
	slog.SetDefault(r.log)
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if err := r.loadConfig(); err != nil {
		return err
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "run":
		cmd, err = parseRunCmd(subArgs, r)
	case "render":
		cmd, err = parseRenderCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot(os.Stdout, os.Stderr)
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
