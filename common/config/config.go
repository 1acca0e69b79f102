package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// default settings
const (
	DefaultStackWords  = 4096
	DefaultMaxCallDepth = 1024
	DefaultRPCPort      = ":37300"
	DefaultMetricPort   = ":37301"
)

// LogConfig is the log config of a classvm process.
type LogConfig struct {
	Module         string `yaml:"module,omitempty"`
	Filepath       string `yaml:"filepath,omitempty"`
	Filename       string `yaml:"filename,omitempty"`
	Fmt            string `yaml:"fmt,omitempty"`
	Console        bool   `yaml:"console,omitempty"`
	Level          string `yaml:"level,omitempty"`
	Async          bool   `yaml:"async,omitempty"`
	RotateInterval int    `yaml:"rotateinterval,omitempty"`
	RotateBackups  int    `yaml:"rotatebackups,omitempty"`
}

// RPCConfig is the grpc server's listen/TLS config.
type RPCConfig struct {
	Port       string `yaml:"port,omitempty"`
	MetricPort string `yaml:"metricPort,omitempty"`
	TLS        bool   `yaml:"tls,omitempty"`
	TLSPath    string `yaml:"tlsPath,omitempty"`
	MaxMsgSize int    `yaml:"maxmsgsize,omitempty"`
}

// NativeConfig controls native-method resolution: the dynamic-library
// search path and a table of builtin symbol overrides, decoded loosely
// with mapstructure since the override table's shape depends on which
// builtins a given deployment registers.
type NativeConfig struct {
	LibraryPaths []string               `yaml:"libraryPaths,omitempty"`
	Builtins     map[string]interface{} `yaml:"builtins,omitempty"`
}

// VMConfig is the main config of a classvm process: engine limits, the
// RPC and native-bridge subsystems, and logging.
type VMConfig struct {
	StackWords  int          `yaml:"stackwords,omitempty"`
	MaxCallDepth int         `yaml:"maxcalldepth,omitempty"`
	ClassPath   []string     `yaml:"classpath,omitempty"`
	Native      NativeConfig `yaml:"native,omitempty"`
	RPC         RPCConfig    `yaml:"rpc,omitempty"`
	Log         LogConfig    `yaml:"log,omitempty"`
}

func (vc *VMConfig) defaultVMConfig() {
	vc.StackWords = DefaultStackWords
	vc.MaxCallDepth = DefaultMaxCallDepth
	vc.ClassPath = []string{"."}
	vc.Native = NativeConfig{
		LibraryPaths: []string{},
		Builtins:     make(map[string]interface{}),
	}
	vc.RPC = RPCConfig{
		Port:       DefaultRPCPort,
		MetricPort: DefaultMetricPort,
		TLS:        false,
		TLSPath:    "./data/tls",
		MaxMsgSize: 16 << 20,
	}
	vc.Log = LogConfig{
		Module:         "classvm",
		Filepath:       "logs",
		Filename:       "classvm",
		Fmt:            "logfmt",
		Console:        true,
		Level:          "debug",
		Async:          false,
		RotateInterval: 60,
		RotateBackups:  168,
	}
}

// NewVMConfig returns a config preloaded with defaults.
func NewVMConfig() *VMConfig {
	vc := &VMConfig{}
	vc.defaultVMConfig()
	return vc
}

// DecodeNativeBuiltins decodes vc.Native.Builtins into dst with
// mapstructure.
func DecodeNativeBuiltins(vc *VMConfig, dst interface{}) error {
	return mapstructure.Decode(vc.Native.Builtins, dst)
}

func (vc *VMConfig) loadConfigFile(configPath, confName string) error {
	viper.SetConfigName(confName)
	viper.AddConfigPath(configPath)
	if err := viper.ReadInConfig(); err != nil {
		return err
	}
	if err := viper.Unmarshal(vc); err != nil {
		fmt.Println("unmarshal config from file error:", err.Error())
		return err
	}
	return nil
}

// LoadConfig loads ./conf/classvm.yaml over the defaults, leaving the
// defaults in place if no file is found.
func (vc *VMConfig) LoadConfig() {
	if err := vc.loadConfigFile("conf", "classvm"); err != nil {
		return
	}
}

func (lc *LogConfig) applyFlags(flags *pflag.FlagSet) {
	flags.StringVar(&lc.Module, "log-module", lc.Module, "log module name")
	flags.StringVar(&lc.Filename, "log-filename", lc.Filename, "log file base name")
	flags.StringVar(&lc.Filepath, "log-filepath", lc.Filepath, "log file directory")
	flags.StringVar(&lc.Fmt, "log-fmt", lc.Fmt, "log format: logfmt or json")
	flags.BoolVar(&lc.Console, "log-console", lc.Console, "also log to stderr")
	flags.StringVar(&lc.Level, "log-level", lc.Level, "minimum log level")
}

func (rc *RPCConfig) applyFlags(flags *pflag.FlagSet) {
	flags.StringVar(&rc.Port, "rpc-port", rc.Port, "grpc listen address")
	flags.StringVar(&rc.MetricPort, "metric-port", rc.MetricPort, "prometheus listen address")
	flags.BoolVar(&rc.TLS, "rpc-tls", rc.TLS, "enable grpc TLS")
}

// ApplyFlags installs flags that override config-file values, composing
// each sub-config's own applyFlags.
func (vc *VMConfig) ApplyFlags(flags *pflag.FlagSet) {
	vc.Log.applyFlags(flags)
	vc.RPC.applyFlags(flags)
	flags.IntVar(&vc.StackWords, "stack-words", vc.StackWords, "operand/local stack size in words")
	flags.IntVar(&vc.MaxCallDepth, "max-call-depth", vc.MaxCallDepth, "maximum frame stack depth")
}
