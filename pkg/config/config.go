package config

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	configDir   string = ".deet"
	configFile  string = "config.yml"
	historyFile string = ".deet_history"
)

// Config defines all configuration options available to be set through the config file.
type Config struct {
	// Commands aliases.
	Aliases map[string][]string `yaml:"aliases"`

	// HistoryFile is where the command history is persisted. A leading
	// "~/" is expanded to the home directory. Defaults to ~/.deet_history.
	HistoryFile string `yaml:"history-file,omitempty"`

	// If DisassembleOnStop is true the instruction at the stop address is
	// printed every time the target stops.
	DisassembleOnStop bool `yaml:"disassemble-on-stop"`

	// DisassembleFlavor is the assembly syntax used to print
	// instructions: intel, gnu or go.
	DisassembleFlavor string `yaml:"disassemble-flavor,omitempty"`

	// DisasmCacheSize is the number of decoded instructions kept in memory.
	DisasmCacheSize int `yaml:"disasm-cache-size,omitempty"`

	// DisableASLR disables address space randomization of the target.
	DisableASLR bool `yaml:"disable-aslr"`
}

// LoadConfig attempts to populate a Config object from the config.yml file.
func LoadConfig() (*Config, error) {
	err := createConfigPath()
	if err != nil {
		return &Config{}, fmt.Errorf("could not create config directory: %v", err)
	}
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return &Config{}, fmt.Errorf("unable to get config file path: %v", err)
	}

	f, err := os.Open(fullConfigFile)
	if err != nil {
		f, err = createDefaultConfig(fullConfigFile)
		if err != nil {
			return &Config{}, fmt.Errorf("error creating default config file: %v", err)
		}
	}
	defer f.Close()

	return decodeConfig(f)
}

func decodeConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return &Config{}, fmt.Errorf("unable to read config data: %v", err)
	}

	var c Config
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return &Config{}, fmt.Errorf("unable to decode config file: %v", err)
	}

	return &c, nil
}

// HistoryFilePath returns the path of the command history file.
func (c *Config) HistoryFilePath() string {
	if c == nil || c.HistoryFile == "" {
		return path.Join(homeDir(), historyFile)
	}
	if strings.HasPrefix(c.HistoryFile, "~/") {
		return filepath.Join(homeDir(), c.HistoryFile[2:])
	}
	return c.HistoryFile
}

func createDefaultConfig(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create config file: %v", err)
	}
	err = writeDefaultConfig(f)
	if err != nil {
		return nil, fmt.Errorf("unable to write default configuration: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return f, nil
}

func writeDefaultConfig(w io.Writer) error {
	_, err := io.WriteString(w,
		`# Configuration file for the deet debugger.

# This is the default configuration file. Available options are provided, but disabled.
# Delete the leading hash mark to enable an item.

# Provided aliases will be added to the default aliases for a given command.
aliases:
  # command: ["alias1", "alias2"]

# File where the command history is saved.
# history-file: ~/.deet_history

# Uncomment the following line to print the instruction at the stop address
# every time the program stops.
# disassemble-on-stop: true

# Assembly syntax used to print instructions: intel, gnu or go.
# disassemble-flavor: intel

# Number of decoded instructions kept in memory.
# disasm-cache-size: 128

# Uncomment the following line to disable address space randomization for
# launched programs.
# disable-aslr: true
`)
	return err
}

// createConfigPath creates the directory structure at which all config files are saved.
func createConfigPath() error {
	path, err := GetConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0700)
}

// GetConfigFilePath gets the full path to the given config file name.
func GetConfigFilePath(file string) (string, error) {
	return path.Join(homeDir(), configDir, file), nil
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	userHomeDir := "."
	usr, err := user.Current()
	if err == nil {
		userHomeDir = usr.HomeDir
	}
	return userHomeDir
}
