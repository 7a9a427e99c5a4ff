package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/cmdpalette/internal/app"
	"github.com/atomicstack/cmdpalette/internal/keymap"
	"github.com/atomicstack/cmdpalette/internal/navigator"
	"github.com/atomicstack/cmdpalette/internal/palette"
	"github.com/spf13/pflag"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
	Verbose  bool
}

const envPrefix = "CMDPALETTE_"

const (
	envCatalog         = envPrefix + "CATALOG"
	envRoot            = envPrefix + "ROOT"
	envSearch          = envPrefix + "SEARCH"
	envIgnorePrefixes  = envPrefix + "IGNORE_PREFIXES"
	envRecent          = envPrefix + "RECENT"
	envOpenHotkey      = envPrefix + "OPEN_HOTKEY"
	envUpHotkey        = envPrefix + "UP_HOTKEY"
	envDownHotkey      = envPrefix + "DOWN_HOTKEY"
	envCloseHotkey     = envPrefix + "CLOSE_HOTKEY"
	envBackHotkey      = envPrefix + "BACK_HOTKEY"
	envSelectHotkey    = envPrefix + "SELECT_HOTKEY"
	envBreadcrumbs     = envPrefix + "BREADCRUMBS"
	envPlaceholder     = envPrefix + "PLACEHOLDER"
	envHideBreadcrumbs = envPrefix + "HIDE_BREADCRUMBS"
	envExitOnClose     = envPrefix + "EXIT_ON_CLOSE"
	envWatch           = envPrefix + "WATCH"
	envTmux            = envPrefix + "TMUX"
	envSocketPath      = envPrefix + "SOCKET"
	envWidth           = envPrefix + "WIDTH"
	envHeight          = envPrefix + "HEIGHT"
	envShowFooter      = envPrefix + "FOOTER"
	envPrint           = envPrefix + "PRINT"
	envVerbose         = envPrefix + "VERBOSE"
	envTrace           = envPrefix + "TRACE"
	envLogFile         = envPrefix + "LOG_FILE"
)

const (
	defaultPlaceholder = "Type a command or search..."
	defaultLogFile     = "cmdpalette.log"
)

// Values holds the flag destinations registered by AddFlags.
type Values struct {
	fs *pflag.FlagSet

	catalog         *string
	root            *string
	search          *string
	ignorePrefixes  *string
	recent          *int
	openHotkey      *string
	upHotkey        *string
	downHotkey      *string
	closeHotkey     *string
	backHotkey      *string
	selectHotkey    *string
	breadcrumbs     *string
	placeholder     *string
	hideBreadcrumbs *bool
	exitOnClose     *bool
	watch           *time.Duration
	tmux            *bool
	socket          *string
	width           *int
	height          *int
	footer          *bool
	print           *bool
	verbose         *bool
	trace           *bool
	logFile         *string
}

// AddFlags registers every option on fs. Defaults come from environ so that
// an explicit flag always wins over the environment.
func AddFlags(fs *pflag.FlagSet, environ []string) *Values {
	env := parseEnv(environ)
	defaults := keymap.DefaultHotkeys()
	return &Values{
		fs:              fs,
		catalog:         fs.StringP("catalog", "c", envOrDefault(env, envCatalog, ""), "path to the catalog file (.yaml, .yml, .toml or .json)"),
		root:            fs.String("root", envOrDefault(env, envRoot, ""), "id of the action to open the palette at"),
		search:          fs.String("search", envOrDefault(env, envSearch, ""), "initial search query"),
		ignorePrefixes:  fs.String("ignore-prefixes", envOrDefault(env, envIgnorePrefixes, ""), "comma-separated query prefixes to strip before matching"),
		recent:          fs.Int("recent", envOrInt(env, envRecent, 0), "label the first N top-level actions as recently used"),
		openHotkey:      fs.String("open-hotkey", envOrDefault(env, envOpenHotkey, defaults.Open), "keys that open the palette (empty disables)"),
		upHotkey:        fs.String("up-hotkey", envOrDefault(env, envUpHotkey, defaults.Up), "keys that move the selection up"),
		downHotkey:      fs.String("down-hotkey", envOrDefault(env, envDownHotkey, defaults.Down), "keys that move the selection down"),
		closeHotkey:     fs.String("close-hotkey", envOrDefault(env, envCloseHotkey, defaults.Close), "keys that close the palette"),
		backHotkey:      fs.String("back-hotkey", envOrDefault(env, envBackHotkey, defaults.Back), "keys that go back to the parent level"),
		selectHotkey:    fs.String("select-hotkey", envOrDefault(env, envSelectHotkey, defaults.Select), "keys that select the highlighted action"),
		breadcrumbs:     fs.String("breadcrumbs", envOrDefault(env, envBreadcrumbs, palette.BreadcrumbsFromRoot.String()), "breadcrumb source: root or selection"),
		placeholder:     fs.String("placeholder", envOrDefault(env, envPlaceholder, defaultPlaceholder), "text shown in the empty search field"),
		hideBreadcrumbs: fs.Bool("hide-breadcrumbs", envOrBool(env, envHideBreadcrumbs, false), "do not render the breadcrumb header"),
		exitOnClose:     fs.Bool("exit-on-close", envOrBool(env, envExitOnClose, true), "exit when the palette closes"),
		watch:           fs.Duration("watch", envOrDuration(env, envWatch, 0), "reload the catalog file when it changes, folding changes within this window into one reload (0 disables)"),
		tmux:            fs.Bool("tmux", envOrBool(env, envTmux, false), "add a tmux sessions action"),
		socket:          fs.String("socket", envOrDefault(env, envSocketPath, ""), "path to the tmux socket used by tmux actions"),
		width:           fs.Int("width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)"),
		height:          fs.Int("height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)"),
		footer:          fs.Bool("footer", envOrBool(env, envShowFooter, false), "enable footer hint row (disabled by default)"),
		print:           fs.Bool("print", envOrBool(env, envPrint, false), "print the id of the selected action on exit"),
		verbose:         fs.Bool("verbose", envOrBool(env, envVerbose, false), "log debug details from the catalog and controller"),
		trace:           fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging"),
		logFile:         fs.String("log-file", envOrDefault(env, envLogFile, defaultLogFile), "path to the log file"),
	}
}

// Config assembles the parsed flags. It does not validate.
func (v *Values) Config(args []string) (Config, error) {
	mode, err := palette.ParseBreadcrumbMode(strings.TrimSpace(*v.breadcrumbs))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		App: app.Config{
			CatalogPath:    *v.catalog,
			Root:           *v.root,
			Search:         *v.search,
			IgnorePrefixes: navigator.ParsePrefixes(*v.ignorePrefixes),
			NumRecent:      *v.recent,
			Hotkeys: keymap.Hotkeys{
				Open:   *v.openHotkey,
				Close:  *v.closeHotkey,
				Select: *v.selectHotkey,
				Up:     *v.upHotkey,
				Down:   *v.downHotkey,
				Back:   *v.backHotkey,
			},
			Breadcrumbs:     mode,
			Placeholder:     *v.placeholder,
			HideBreadcrumbs: *v.hideBreadcrumbs,
			ExitOnClose:     *v.exitOnClose,
			Watch:           *v.watch,
			Tmux:            *v.tmux,
			SocketPath:      *v.socket,
			Width:           *v.width,
			Height:          *v.height,
			ShowFooter:      *v.footer,
			Print:           *v.print,
		},
		Logging: Logging{
			FilePath: *v.logFile,
			Trace:    *v.trace,
			Verbose:  *v.verbose,
		},
		Flags: make(map[string]string),
		Args:  append([]string(nil), args...),
	}
	v.fs.VisitAll(func(f *pflag.Flag) {
		cfg.Flags[f.Name] = f.Value.String()
	})
	return cfg, nil
}

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	fs := pflag.NewFlagSet("cmdpalette", pflag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	values := AddFlags(fs, environ)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return values.Config(fs.Args())
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate checks option ranges and that the hotkeys resolve without
// conflicts. A catalog is required unless the tmux source supplies actions.
func Validate(cfg Config) error {
	var errs []error
	a := cfg.App
	if strings.TrimSpace(a.CatalogPath) == "" && !a.Tmux {
		errs = append(errs, errors.New("a catalog file is required (--catalog or "+envCatalog+")"))
	}
	if a.NumRecent < 0 {
		errs = append(errs, fmt.Errorf("recent must be >= 0 (got %d)", a.NumRecent))
	}
	if a.Width < 0 {
		errs = append(errs, fmt.Errorf("width must be >= 0 (got %d)", a.Width))
	}
	if a.Height < 0 {
		errs = append(errs, fmt.Errorf("height must be >= 0 (got %d)", a.Height))
	}
	if a.Watch < 0 {
		errs = append(errs, fmt.Errorf("watch must be >= 0 (got %s)", a.Watch))
	}
	if a.Watch > 0 && a.CatalogPath == "" {
		errs = append(errs, errors.New("watch requires a catalog file"))
	}
	if _, err := keymap.New(a.Hotkeys); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
