package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"factor/internal/testsupport"
)

type cliTestEnv struct {
	workspace  testsupport.Workspace
	parsetPath string
	configPath string
	outputDir  string
}

func setupCLITestEnv(t *testing.T, msNames ...string) *cliTestEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FACTOR_TEMPLATES_DIR", "")
	t.Setenv("FACTOR_LOG_LEVEL", "")

	ws := testsupport.NewWorkspace(t, msNames...)
	t.Chdir(ws.Root)

	outputDir := filepath.Join(ws.Root, "rendered")
	configPath := testsupport.WriteConfig(t, ws.Root, strings.Join([]string{
		"[logging]",
		`level = "error"`,
		"",
		"[render]",
		`output_dir = "` + filepath.ToSlash(outputDir) + `"`,
		"",
	}, "\n"))

	return &cliTestEnv{
		workspace:  ws,
		parsetPath: ws.WriteSampleParset(t, ""),
		configPath: configPath,
		outputDir:  outputDir,
	}
}

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

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func writeParsetFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
