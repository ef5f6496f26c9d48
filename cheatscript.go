// Package cheatscript is the integration surface of spec §4.10/§4.11
// (C11): it wires the parse cache, the variable store, the expression/
// substitution engines, the script-stack scheduler, and the hotkey
// binding table together behind the five entry points a host actually
// calls — HandleMessage, Update, Paste, SaveLast, and ProcessHotkey — plus
// the lifecycle hooks that launch "first_launch"/"launch"/"loop" scripts.
//
// Grounded on the teacher's interp.New/RunnerOption functional-options
// constructor (interp/interp.go) applied to New, and on
// original_source/Visual/Cheats/CheatScript.cpp's HandleMessage/IsScript/
// SaveLast bodies for the exact chat-line routing rules this file
// implements (the "/." passthrough prefix, the "/ss" alias, the
// warp-verb IsScript check).
package cheatscript

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grindhollow/cheatscript/cache"
	"github.com/grindhollow/cheatscript/cheatlog"
	"github.com/grindhollow/cheatscript/config"
	"github.com/grindhollow/cheatscript/expand"
	"github.com/grindhollow/cheatscript/fileutil"
	"github.com/grindhollow/cheatscript/input"
	"github.com/grindhollow/cheatscript/interp"
	"github.com/grindhollow/cheatscript/syntax"
	"github.com/grindhollow/cheatscript/vars"
)

// Options configures a new Interpreter. Host and ConfigPath are the only
// required fields; LogPath is optional and everything else has a
// spec-defined default.
type Options struct {
	// ConfigPath names the "cheat_config.json" file (spec §6); it is
	// created with Default() contents if absent.
	ConfigPath string
	// LogPath names the rolling "script.cheatlog" file (spec §6); logging
	// is discarded if empty.
	LogPath string

	Host     interp.Host
	External interp.ExternalCaller
	Browse   expand.Browse

	// WarpVerbs overrides the default teleport-family verb set (spec
	// §4.9's Open Question #4); nil keeps interp.DefaultWarpVerbs.
	WarpVerbs []string
	// DefaultBindings seeds the hotkey table (spec §4.9); nil uses
	// input.DefaultBindings().
	DefaultBindings []input.Binding
}

// Interpreter is the host-facing façade over the whole Cheat Script
// Interpreter (C11).
type Interpreter struct {
	core    *interp.Interpreter
	cache   *cache.Cache
	cfg     *config.Config
	log     *cheatlog.Logger
	logFile *os.File
	keys    *input.Table

	warned      map[string]bool
	lastCommand string
}

// New constructs an Interpreter, loading config, opening the log, seeding
// the parse cache from config's search paths, and performing the initial
// synchronous cache scan (spec §4.3's "populated at startup").
func New(ctx context.Context, opts Options) (*Interpreter, error) {
	if opts.Host == nil {
		return nil, fmt.Errorf("cheatscript: Options.Host is required")
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("cheatscript: loading config: %w", err)
	}

	var (
		logWriter io.Writer = io.Discard
		logFile   *os.File
	)
	if opts.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogPath), 0o755); err != nil {
			return nil, fmt.Errorf("cheatscript: creating log dir: %w", err)
		}
		f, err := os.OpenFile(opts.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("cheatscript: opening log: %w", err)
		}
		logWriter, logFile = f, f
	}
	logger := cheatlog.New(logWriter, cheatlog.Level(cfg.LogLevel))

	in := &Interpreter{
		cfg:     cfg,
		log:     logger,
		logFile: logFile,
		keys:    input.NewTable(),
		warned:  map[string]bool{},
	}
	in.keys.RestoreMissingBindings(defaultOrOverride(opts.DefaultBindings))

	in.cache = cache.New(cfg.SearchPaths(), in.onDeprecatedAlias)
	if err := in.cache.ReloadCache(ctx); err != nil {
		logger.Warn("initial cache scan reported errors", cheatlog.ScriptFields("", 0, 0))
	}

	coreOpts := []interp.Option{
		interp.WithAliasWarner(in.onDeprecatedAlias),
	}
	if opts.External != nil {
		coreOpts = append(coreOpts, interp.WithExternalCaller(opts.External))
	}
	if opts.Browse != nil {
		coreOpts = append(coreOpts, interp.WithBrowse(opts.Browse))
	}
	if opts.WarpVerbs != nil {
		coreOpts = append(coreOpts, interp.WithWarpVerbs(opts.WarpVerbs))
	}
	in.core = interp.New(in.cache, vars.NewScope(), opts.Host, coreOpts...)

	return in, nil
}

func defaultOrOverride(bindings []input.Binding) []input.Binding {
	if bindings != nil {
		return bindings
	}
	return input.DefaultBindings()
}

func (in *Interpreter) onDeprecatedAlias(oldSpelling, newSpelling, filename string) {
	key := oldSpelling + "->" + filename
	if in.warned[key] {
		return
	}
	in.warned[key] = true
	in.log.Warn(fmt.Sprintf("deprecated command %q used, prefer %q", oldSpelling, newSpelling),
		cheatlog.ScriptFields(filename, 0, 0))
}

// Close stops any background cache watch and closes the log file.
func (in *Interpreter) Close() {
	in.cache.Close()
	if in.logFile != nil {
		in.logFile.Close()
	}
}

// Cache exposes the underlying parse cache, e.g. for a host's "/reload"
// admin command or a cmd/cheatsh subcommand.
func (in *Interpreter) Cache() *cache.Cache { return in.cache }

// Config exposes the loaded configuration for host inspection/editing.
func (in *Interpreter) Config() *config.Config { return in.cfg }

// Update is the host's per-tick entry point (spec §4.10/§4.11): it drains
// every running script stack and, on the very first call, launches
// "first_launch" then "launch" if either is cached; thereafter it invokes
// a cached "loop" script at the configured rate (default 60Hz, spec
// §4.10).
func (in *Interpreter) Update(frameMs int) {
	if !in.core.Launched() {
		in.core.MarkLaunched()
		in.core.ProcessFile("first_launch", nil)
		in.core.ProcessFile("launch", nil)
	}
	if in.core.AdvanceLoopTimer(frameMs) {
		in.core.ProcessFile("loop", nil)
	}
	in.core.TickFrame(frameMs)
}

// HandleMessage classifies and routes one line of chat text per spec
// §4.10. handled is true if the Interpreter consumed the line itself;
// false means the host's own chat subsystem should still forward it
// (to the game server, or because cheats are currently disabled).
func (in *Interpreter) HandleMessage(line string) (handled bool) {
	if !in.cfg.CheatsEnabled {
		if strings.EqualFold(strings.TrimSpace(line), "/enablecheats") {
			in.cfg.CheatsEnabled = true
			return true
		}
		return false
	}

	trimmed := strings.TrimSpace(line)
	switch {
	case strings.EqualFold(trimmed, "/ss"), strings.EqualFold(trimmed, "/stopscripts"):
		in.core.StopAll()
		return true

	case strings.EqualFold(trimmed, "/last"):
		if in.lastCommand == "" {
			return true
		}
		return in.HandleMessage(in.lastCommand)

	case strings.HasPrefix(strings.ToLower(trimmed), "/savelast "):
		name := strings.TrimSpace(trimmed[len("/savelast "):])
		if err := in.SaveLast(name); err != nil {
			in.log.Warn("savelast failed: "+err.Error(), cheatlog.ScriptFields("", 0, 0))
		}
		return true

	case strings.HasPrefix(strings.ToLower(trimmed), "/paste "):
		body := trimmed[len("/paste "):]
		_ = in.Paste(body)
		return true

	case strings.HasPrefix(trimmed, "/."):
		in.lastCommand = line
		return false
	}

	in.lastCommand = line

	name, args, opensFile := parseInvocation(trimmed)
	if name != "" {
		if _, ok := in.cache.GetCachedScript(name); ok {
			if opensFile {
				in.log.Info("open-script request has no file-dialog backend on this platform; stubbed", cheatlog.ScriptFields(name, 0, 0))
				return true
			}
			return in.core.ProcessFile(name, args)
		}
	}

	if in.IsScript(trimmed) {
		if err := in.core.ProcessScript(trimmed); err != nil {
			in.log.Warn("ad-hoc script parse failed: "+err.Error(), cheatlog.ScriptFields("", 0, 0))
		}
		return true
	}

	return false
}

// parseInvocation splits a "/<name> [args...] [?]" CLI line (spec §6)
// into its script name (without the leading "/"), its argument words, and
// whether a trailing bare "?" asked to open the file rather than run it.
func parseInvocation(line string) (name string, args []string, opensFile bool) {
	if !strings.HasPrefix(line, "/") {
		return "", nil, false
	}
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return "", nil, false
	}
	name = fields[0]
	args = fields[1:]
	if len(args) > 0 && args[len(args)-1] == "?" {
		opensFile = true
		args = args[:len(args)-1]
	}
	return name, args, opensFile
}

// IsScript implements spec §4.10's classifier: a "$"-variable prefix, a
// repeat suffix greater than 1, multiple comma-separated pieces with at
// least one "/"-prefixed piece, or a recognized warp verb.
func (in *Interpreter) IsScript(line string) bool {
	if strings.Contains(line, "$args") || strings.Contains(line, "$mem[") ||
		strings.Contains(line, "$result[") || strings.Contains(line, "$browse[") {
		return true
	}
	if _, count := syntax.ExtractRepeatCount(line); count > 1 {
		return true
	}
	pieces := syntax.SplitComma(line, true)
	if len(pieces) > 1 {
		for _, p := range pieces {
			if strings.HasPrefix(strings.TrimSpace(p), "/") {
				return true
			}
		}
	}
	word := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(firstWord(line), "/."), "/"))
	return in.core.IsWarpVerb(word)
}

func firstWord(line string) string {
	line = strings.TrimSpace(line)
	if idx := strings.IndexAny(line, " \t"); idx >= 0 {
		return line[:idx]
	}
	return line
}

// Paste treats body as a verbatim ad-hoc script, per spec §6's "/paste
// <body>" CLI surface.
func (in *Interpreter) Paste(body string) error {
	return in.core.ProcessScript(body)
}

// SaveLast writes the most recently handled chat line to
// "<save-last-dir>/<name>.cheat" (spec §6/§8 scenario 6). It is an error
// to call before any line has been handled.
func (in *Interpreter) SaveLast(name string) error {
	if in.lastCommand == "" {
		return fmt.Errorf("cheatscript: no command to save yet")
	}
	if strings.EqualFold(name, "last") {
		return fmt.Errorf("cheatscript: %q is a reserved filename", name+fileutil.Ext)
	}
	dir := in.cfg.SaveLastDirectory
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cheatscript: creating save-last dir: %w", err)
	}
	path := filepath.Join(dir, name+fileutil.Ext)
	if err := os.WriteFile(path, []byte(in.lastCommand+"\n"), 0o644); err != nil {
		return err
	}
	return in.cache.Add(path)
}

// ProcessHotkey feeds one decoded input event through the binding table
// (spec §4.9), running the matched execution string as an ad-hoc script
// via ProcessScript (spec §4.9 step 4: "invoke ProcessScript on its
// execution string" — not HandleMessage, so a bound chat line always
// fires rather than being reclassified), or — absent any match —
// falling back to a cached "hotkey" script if one exists, invoked as
// "/hotkey <kind> <value>" (spec §4.9 step 5).
func (in *Interpreter) ProcessHotkey(ev input.Event) {
	if exec, fired := in.keys.ProcessEvent(ev); fired {
		if err := in.core.ProcessScript(exec); err != nil {
			in.log.Warn("hotkey execution string failed to parse: "+err.Error(), cheatlog.ScriptFields("", 0, 0))
		}
		return
	}
	if ev.Kind == input.KindNone {
		return
	}
	if _, ok := in.cache.GetCachedScript("hotkey"); ok {
		in.core.ProcessFile("hotkey", []string{kindName(ev.Kind), ev.Value})
	}
}

// Bindings exposes the live hotkey table for a host's key-bind UI.
func (in *Interpreter) Bindings() *input.Table { return in.keys }

// Running reports whether any script stack still has frames to drain.
func (in *Interpreter) Running() bool { return in.core.Running() }

func kindName(k input.Kind) string {
	switch k {
	case input.KindDown:
		return "Down"
	case input.KindUp:
		return "Up"
	case input.KindScroll:
		return "Scroll"
	case input.KindHScroll:
		return "HScroll"
	case input.KindGainedFocus:
		return "GainedFocus"
	case input.KindLostFocus:
		return "LostFocus"
	case input.KindResized:
		return "Resized"
	default:
		return "null"
	}
}
