package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigDecodes(t *testing.T) {
	var buf bytes.Buffer
	if err := writeDefaultConfig(&buf); err != nil {
		t.Fatal(err)
	}
	c, err := decodeConfig(&buf)
	if err != nil {
		t.Fatalf("default configuration does not decode: %v", err)
	}
	if c.DisassembleOnStop || c.DisableASLR || c.HistoryFile != "" {
		t.Fatalf("default configuration should leave every option disabled: %#v", c)
	}
}

func TestDecodeConfig(t *testing.T) {
	c, err := decodeConfig(bytes.NewBufferString(`
aliases:
  continue: ["go"]
history-file: ~/hist
disassemble-on-stop: true
disassemble-flavor: gnu
disasm-cache-size: 16
`))
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Aliases["continue"]; len(got) != 1 || got[0] != "go" {
		t.Fatalf("wrong aliases %v", c.Aliases)
	}
	if !c.DisassembleOnStop || c.DisassembleFlavor != "gnu" || c.DisasmCacheSize != 16 {
		t.Fatalf("wrong config %#v", c)
	}

	if _, err := decodeConfig(bytes.NewBufferString("aliases: [")); err == nil {
		t.Fatal("expected error decoding malformed config")
	}
}

func TestHistoryFilePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got, want := (*Config)(nil).HistoryFilePath(), filepath.Join(home, historyFile); got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
	c := &Config{HistoryFile: "~/sub/hist"}
	if got, want := c.HistoryFilePath(), filepath.Join(home, "sub", "hist"); got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
	c.HistoryFile = "/tmp/abs"
	if got := c.HistoryFilePath(); got != "/tmp/abs" {
		t.Fatalf("expected absolute path to be kept, got %q", got)
	}
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("nil config")
	}
	if _, err := os.Stat(filepath.Join(home, configDir, configFile)); err != nil {
		t.Fatalf("default config file not created: %v", err)
	}

	if err := os.WriteFile(filepath.Join(home, configDir, configFile), []byte("disassemble-on-stop: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	c, err = LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if !c.DisassembleOnStop {
		t.Fatal("saved option not loaded back")
	}
}
