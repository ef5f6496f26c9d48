// Command cheatsh is a developer harness over the cheatscript package: it
// drives the Interpreter from a terminal instead of a game client, for
// exercising and debugging ".cheat" scripts. Grounded on the teacher's
// cmd/shfmt as "the small CLI front-end over the core library packages",
// rebuilt on github.com/spf13/cobra per SPEC_FULL.md's AMBIENT STACK
// (the wider retrieved pack favors cobra for multi-subcommand CLIs over
// the teacher's own bespoke flag parsing).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grindhollow/cheatscript"
	"github.com/grindhollow/cheatscript/input"
)

// stdoutHost forwards every chat/print call straight to the terminal,
// the harness's stand-in for a real game client's chat window.
type stdoutHost struct{}

func (stdoutHost) SendChat(text string) { fmt.Println("chat>", text) }
func (stdoutHost) PrintMsg(msg string)  { fmt.Println("info>", msg) }
func (stdoutHost) Ready() bool          { return true }
func (stdoutHost) ExternalScriptHeader(target string) string {
	return ""
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, logPath string

	root := &cobra.Command{
		Use:   "cheatsh",
		Short: "Developer harness for the Cheat Script Interpreter",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "cheat_config.json", "path to cheat_config.json")
	root.PersistentFlags().StringVar(&logPath, "log", "script.cheatlog", "path to the rolling log file")

	newInterp := func() (*cheatscript.Interpreter, error) {
		return cheatscript.New(context.Background(), cheatscript.Options{
			ConfigPath: configPath,
			LogPath:    logPath,
			Host:       stdoutHost{},
		})
	}

	root.AddCommand(newRunCmd(newInterp))
	root.AddCommand(newWatchCmd(newInterp))
	root.AddCommand(newBindCmd(newInterp))
	return root
}

// newRunCmd implements "cheatsh run <script> [args...]": sends
// "/<name> [args...]" to HandleMessage, where name is the argument's base
// name without its extension, so the script must be in the cache; a path
// on disk is not parsed directly. It then ticks the Interpreter until
// every stack finishes.
func newRunCmd(newInterp func() (*cheatscript.Interpreter, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script> [args...]",
		Short: "Run a cached .cheat script to completion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := newInterp()
			if err != nil {
				return err
			}
			defer in.Close()

			target, scriptArgs := args[0], args[1:]
			line := "/" + strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))
			if len(scriptArgs) > 0 {
				line += " " + strings.Join(scriptArgs, " ")
			}
			if !in.HandleMessage(line) {
				return fmt.Errorf("cheatsh: %q is not a recognized script or command", target)
			}

			const frameMs = 16
			const maxFrames = 100000
			for i := 0; i < maxFrames && in.Running(); i++ {
				in.Update(frameMs)
			}
			return nil
		},
	}
}

// newWatchCmd implements "cheatsh watch": starts a live fsnotify watch
// over the configured search paths (delegating to cache.Cache.Watch),
// prints one line once watching has begun, and blocks until interrupted.
func newWatchCmd(newInterp func() (*cheatscript.Interpreter, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the configured search paths and hot-reload .cheat files",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := newInterp()
			if err != nil {
				return err
			}
			defer in.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := in.Cache().Watch(ctx); err != nil {
				return err
			}
			fmt.Println("watching for .cheat changes; press Ctrl+C to stop")
			<-ctx.Done()
			return nil
		},
	}
}

// newBindCmd implements "cheatsh bind": lists the current hotkey table, or
// simulates one key-down with "--fire <name>" so a binding's execution
// string can be exercised without a real platform input backend.
func newBindCmd(newInterp func() (*cheatscript.Interpreter, error)) *cobra.Command {
	var fireKey string

	cmd := &cobra.Command{
		Use:   "bind",
		Short: "List the current hotkey bindings, or simulate firing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := newInterp()
			if err != nil {
				return err
			}
			defer in.Close()

			if fireKey != "" {
				in.ProcessHotkey(input.NewKeyDownEvent(fireKey))
				return nil
			}

			for _, b := range in.Bindings().Bindings() {
				fmt.Printf("%s -> %s\n", b.Value, b.Exec)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fireKey, "fire", "", "simulate a key-down event for this key name and run its binding")
	return cmd
}
