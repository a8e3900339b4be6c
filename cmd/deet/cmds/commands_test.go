package cmds

import (
	"bytes"
	"strings"
	"testing"

	"github.com/deet-dbg/deet/pkg/config"
	"github.com/deet-dbg/deet/pkg/proc"
)

func TestVersionCommand(t *testing.T) {
	cmd := New()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "deet debugger\nVersion: ") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestMissingBinary(t *testing.T) {
	cmd := New()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	if err == nil || err.Error() != "you must provide a path to a binary" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestNewDebuggerConfig(t *testing.T) {
	cmd := New()
	flags := cmd.PersistentFlags()
	if err := flags.Parse([]string{"--wd", "/tmp", "--tty", "/dev/pts/9"}); err != nil {
		t.Fatal(err)
	}

	conf := &config.Config{DisableASLR: true, DisassembleFlavor: "go", DisasmCacheSize: 16}
	dconf, err := newDebuggerConfig(conf, flags)
	if err != nil {
		t.Fatal(err)
	}
	if dconf.WorkingDir != "/tmp" || dconf.TTY != "/dev/pts/9" {
		t.Fatalf("flags not applied: %+v", dconf)
	}
	if !dconf.DisableASLR || dconf.Flavour != proc.GoFlavour || dconf.DisasmCacheSize != 16 {
		t.Fatalf("config file not applied: %+v", dconf)
	}

	// An explicit flag wins over the config file.
	if err := flags.Parse([]string{"--disable-aslr=false"}); err != nil {
		t.Fatal(err)
	}
	dconf, err = newDebuggerConfig(conf, flags)
	if err != nil {
		t.Fatal(err)
	}
	if dconf.DisableASLR {
		t.Fatal("--disable-aslr=false ignored")
	}

	conf.DisassembleFlavor = "nasm"
	if _, err := newDebuggerConfig(conf, flags); err == nil {
		t.Fatal("unknown flavor accepted")
	}
}
