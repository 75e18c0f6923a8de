package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"thermatiff/internal/config"
	"thermatiff/internal/testsupport"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	content := fmt.Sprintf(`[paths]
input_dir = %q
output_dir = %q
log_dir = %q
tools_dir = %q

[tools]
decoder_binary = %q

[history]
path = %q
`,
		cfg.Paths.InputDir,
		cfg.Paths.OutputDir,
		cfg.Paths.LogDir,
		cfg.Paths.ToolsDir,
		cfg.Tools.DecoderBinary,
		cfg.History.Path,
	)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func newTestConfigFile(t *testing.T, opts ...testsupport.ConfigOption) string {
	t.Helper()
	return writeTestConfig(t, testsupport.NewConfig(t, opts...))
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
