package proc

import (
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"
)

// AssemblyFlavour is the assembly syntax to display.
type AssemblyFlavour int

const (
	// GNUFlavour will display GNU assembly syntax.
	GNUFlavour = AssemblyFlavour(iota)
	// IntelFlavour will display Intel assembly syntax.
	IntelFlavour
	// GoFlavour will display Go assembly syntax.
	GoFlavour
)

// ParseAssemblyFlavour converts a flavour name as used in the config file.
// The empty string selects IntelFlavour.
func ParseAssemblyFlavour(s string) (AssemblyFlavour, error) {
	switch strings.ToLower(s) {
	case "", "intel":
		return IntelFlavour, nil
	case "gnu", "att":
		return GNUFlavour, nil
	case "go":
		return GoFlavour, nil
	}
	return 0, fmt.Errorf("unknown assembly flavour %q", s)
}

// MemoryReader is the subset of Process needed to fetch instruction bytes.
type MemoryReader interface {
	ReadMemory(addr uint64, data []byte) (int, error)
}

// Instruction is a single decoded machine instruction.
type Instruction struct {
	PC    uint64
	Bytes []byte
	Text  string
}

// ErrUnsupportedArch is returned by NewDisassembler for architectures
// without a decoder.
var ErrUnsupportedArch = errors.New("unsupported architecture")

const defaultDisasmCacheSize = 128

type disasmKey struct {
	pid int
	pc  uint64
}

// Disassembler decodes the instruction at a program counter. Decoded
// instructions are cached per (pid, pc) since a process is usually
// stopped at the same few addresses.
type Disassembler struct {
	goarch  string
	flavour AssemblyFlavour
	cache   *lru.Cache
}

// NewDisassembler returns a Disassembler for goarch ("amd64", "386" or
// "arm64"). A non-positive cacheSize selects the default.
func NewDisassembler(goarch string, flavour AssemblyFlavour, cacheSize int) (*Disassembler, error) {
	switch goarch {
	case "amd64", "386", "arm64":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArch, goarch)
	}
	if cacheSize <= 0 {
		cacheSize = defaultDisasmCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Disassembler{goarch: goarch, flavour: flavour, cache: cache}, nil
}

func (d *Disassembler) maxInstructionLength() int {
	if d.goarch == "arm64" {
		return 4
	}
	return 15
}

// Decode reads and decodes the instruction at pc in process pid.
func (d *Disassembler) Decode(pid int, mem MemoryReader, pc uint64) (*Instruction, error) {
	key := disasmKey{pid, pc}
	if v, ok := d.cache.Get(key); ok {
		return v.(*Instruction), nil
	}
	buf := make([]byte, d.maxInstructionLength())
	n, err := mem.ReadMemory(pc, buf)
	if n == 0 {
		if err == nil {
			err = errors.New("empty read")
		}
		return nil, fmt.Errorf("could not read memory at %#x: %v", pc, err)
	}
	inst, err := d.DecodeBytes(buf[:n], pc)
	if err != nil {
		return nil, err
	}
	d.cache.Add(key, inst)
	return inst, nil
}

// DecodeBytes decodes the instruction at the start of mem, which was
// read from address pc.
func (d *Disassembler) DecodeBytes(mem []byte, pc uint64) (*Instruction, error) {
	switch d.goarch {
	case "arm64":
		inst, err := arm64asm.Decode(mem)
		if err != nil {
			return nil, err
		}
		return &Instruction{PC: pc, Bytes: mem[:4], Text: arm64asm.GNUSyntax(inst)}, nil
	default:
		bits := 64
		if d.goarch == "386" {
			bits = 32
		}
		inst, err := x86asm.Decode(mem, bits)
		if err != nil {
			return nil, err
		}
		var text string
		switch d.flavour {
		case GNUFlavour:
			text = x86asm.GNUSyntax(inst, pc, nil)
		case GoFlavour:
			text = x86asm.GoSyntax(inst, pc, nil)
		default:
			text = x86asm.IntelSyntax(inst, pc, nil)
		}
		return &Instruction{PC: pc, Bytes: mem[:inst.Len], Text: text}, nil
	}
}

// Forget drops the cached instructions of pid.
func (d *Disassembler) Forget(pid int) {
	for _, k := range d.cache.Keys() {
		if k.(disasmKey).pid == pid {
			d.cache.Remove(k)
		}
	}
}
