package cheatscript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/grindhollow/cheatscript/input"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	chat    []string
	notices []string
}

func (h *fakeHost) SendChat(text string) { h.chat = append(h.chat, text) }
func (h *fakeHost) PrintMsg(msg string)  { h.notices = append(h.notices, msg) }
func (h *fakeHost) Ready() bool          { return true }
func (h *fakeHost) ExternalScriptHeader(target string) string {
	return ""
}

func newTestInterpreter(t *testing.T) (*Interpreter, *fakeHost, string) {
	t.Helper()
	dir := t.TempDir()
	saveDir := filepath.Join(dir, "Cheats")
	configPath := filepath.Join(dir, "cheat_config.json")

	// Pre-seed the config so the save-last directory lives under the
	// test's own tempdir rather than the process cwd's relative default.
	cfgJSON := fmt.Sprintf(`{"cheats_enabled": true, "log_level": 1, "save_last_directory": %q, "additional_search_paths": []}`, saveDir)
	require.NoError(t, os.WriteFile(configPath, []byte(cfgJSON), 0o644))

	host := &fakeHost{}
	in, err := New(context.Background(), Options{
		ConfigPath: configPath,
		LogPath:    filepath.Join(dir, "script.cheatlog"),
		Host:       host,
	})
	require.NoError(t, err)
	t.Cleanup(in.Close)
	return in, host, dir
}

func TestDotPrefixIsTreatedAsChatNotScript(t *testing.T) {
	in, _, _ := newTestInterpreter(t)

	handled := in.HandleMessage("/.ping")
	require.False(t, handled)
}

func TestSaveLastThenReplayForwardsVerbatim(t *testing.T) {
	in, host, dir := newTestInterpreter(t)

	in.HandleMessage("/.ping")
	require.NoError(t, in.SaveLast("mytest"))

	savedPath := filepath.Join(dir, "Cheats/", "mytest.cheat")
	_, err := os.Stat(savedPath)
	require.NoError(t, err)

	handled := in.HandleMessage("/mytest")
	require.True(t, handled)
	require.Contains(t, host.chat, "/.ping")
}

func TestStopScriptsAbortsEverything(t *testing.T) {
	in, _, _ := newTestInterpreter(t)
	require.NoError(t, in.Paste("#repeat 1000\nping\n#end"))
	handled := in.HandleMessage("/ss")
	require.True(t, handled)
}

func TestEnableCheatsGatesEverythingElse(t *testing.T) {
	in, _, _ := newTestInterpreter(t)
	in.cfg.CheatsEnabled = false

	require.False(t, in.HandleMessage("/paste hello"))
	require.True(t, in.HandleMessage("/enablecheats"))
	require.True(t, in.cfg.CheatsEnabled)
}

func TestHotkeyFiresBoundExecString(t *testing.T) {
	in, host, _ := newTestInterpreter(t)
	in.Bindings().WaitForNewBinding("/say hi")
	in.ProcessHotkey(input.Event{Kind: input.KindDown, Value: "F2"})

	in.ProcessHotkey(input.Event{Kind: input.KindDown, Value: "F2"})
	require.Contains(t, host.chat, "/say hi")
}

func TestIsScriptRecognizesVariablePrefixAndRepeatSuffix(t *testing.T) {
	in, _, _ := newTestInterpreter(t)
	require.True(t, in.IsScript("/say $mem[x]"))
	require.True(t, in.IsScript("/ping x3"))
	require.True(t, in.IsScript("/a, /b"))
	require.False(t, in.IsScript("hello there"))
}
