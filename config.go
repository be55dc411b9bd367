package odinplan

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/odinplan/control"
	"github.com/arloliu/odinplan/strategy"
)

// ControlConfig describes the odin-control server.
type ControlConfig struct {
	// IP is the address the control server listens on.
	IP string `yaml:"ip"`

	// Port is the HTTP port of the control server (default: 8888).
	Port int `yaml:"port"`
}

// FEMDestConfig is the data link FEMs send UDP frames to.
type FEMDestConfig struct {
	Name   string `yaml:"name"`
	MAC    string `yaml:"mac"`
	IP     string `yaml:"ip"`
	Subnet int    `yaml:"subnet"`
}

// PoolConfig describes one OdinData server.
type PoolConfig struct {
	// IP is the address of the server hosting the processes.
	IP string `yaml:"ip"`

	// Processes is the number of FR/FP pairs on this server.
	Processes int `yaml:"processes"`

	// SharedMemSize is the shared memory buffer size in bytes.
	SharedMemSize int64 `yaml:"sharedMemSize"`

	// IOThreads is the number of FR IPC IO threads (default: 1).
	IOThreads int `yaml:"ioThreads"`

	// NUMANodes spreads processes over this many NUMA nodes (0 disables pinning).
	NUMANodes int `yaml:"numaNodes"`

	// Sensor overrides the build-wide sensor for this server.
	Sensor string `yaml:"sensor"`

	// FEMDest is required for detectors whose FEMs stream UDP directly to the servers.
	FEMDest FEMDestConfig `yaml:"femDest"`
}

// TopologyConfig controls the FEM to frame-receiver fan-out table.
type TopologyConfig struct {
	// Policy is ROUNDROBIN or ONE2ONE (default: the detector's policy).
	Policy string `yaml:"policy"`

	// Modules is the number of FEM modules (default: number of pools).
	Modules int `yaml:"modules"`
}

// PluginConfig selects the plugin chain variant.
type PluginConfig struct {
	// Mode selects a chain variant (eiger: Simple, Malcolm or Kafka).
	Mode string `yaml:"mode"`

	// KafkaServers is the broker list for the eiger Kafka variant.
	KafkaServers string `yaml:"kafkaServers"`
}

// PathConfig holds install locations substituted into generated files.
type PathConfig struct {
	// OdinData is the odin-data install root.
	OdinData string `yaml:"odinData"`

	// Detector is the detector plugin install root (default: OdinData).
	Detector string `yaml:"detector"`

	// HDF5Filters is the HDF5 filter plugin directory.
	HDF5Filters string `yaml:"hdf5Filters"`

	// LogConfig is the log4cxx configuration given to FR and FP.
	LogConfig string `yaml:"logConfig"`

	// OdinServer is the odin-control server executable.
	OdinServer string `yaml:"odinServer"`
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	// Dir is the output directory (default: "./build").
	Dir string `yaml:"dir"`

	// Bundle, when set, is the path of an lz4-compressed tar of every artifact.
	Bundle string `yaml:"bundle"`

	// MetricsFile, when set, receives planning metrics in textfile format.
	MetricsFile string `yaml:"metricsFile"`
}

// Config is the build description read by the planner.
type Config struct {
	// Detector is the detector family (excalibur, tristan, eiger, arc, xspress).
	Detector string `yaml:"detector"`

	// Sensor is the sensor option shared by every pool unless overridden.
	Sensor string `yaml:"sensor"`

	Control  ControlConfig  `yaml:"control"`
	Pools    []PoolConfig   `yaml:"pools"`
	Topology TopologyConfig `yaml:"topology"`
	Plugins  PluginConfig   `yaml:"plugins"`
	Paths    PathConfig     `yaml:"paths"`
	Output   OutputConfig   `yaml:"output"`
}

// DefaultConfig returns a Config with the non-detector defaults filled in.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Control: ControlConfig{
			IP:   "127.0.0.1",
			Port: control.DefaultPort,
		},
		Paths: PathConfig{
			OdinData:    "/opt/odin-data",
			HDF5Filters: "/opt/hdf5filters/prefix/h5plugin",
			LogConfig:   "log4cxx.xml",
			OdinServer:  "/opt/odin-control/bin/odin_server",
		},
		Output: OutputConfig{
			Dir: "./build",
		},
	}
}

// SetDefaults fills in missing configuration values.
//
// Detector-dependent defaults (topology policy) are resolved by the planner.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Control.IP == "" {
		cfg.Control.IP = defaults.Control.IP
	}
	if cfg.Control.Port == 0 {
		cfg.Control.Port = defaults.Control.Port
	}
	if cfg.Paths.OdinData == "" {
		cfg.Paths.OdinData = defaults.Paths.OdinData
	}
	if cfg.Paths.Detector == "" {
		cfg.Paths.Detector = cfg.Paths.OdinData
	}
	if cfg.Paths.HDF5Filters == "" {
		cfg.Paths.HDF5Filters = defaults.Paths.HDF5Filters
	}
	if cfg.Paths.LogConfig == "" {
		cfg.Paths.LogConfig = defaults.Paths.LogConfig
	}
	if cfg.Paths.OdinServer == "" {
		cfg.Paths.OdinServer = defaults.Paths.OdinServer
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = defaults.Output.Dir
	}
	if cfg.Topology.Modules == 0 {
		cfg.Topology.Modules = len(cfg.Pools)
	}
	cfg.Topology.Policy = strings.ToUpper(cfg.Topology.Policy)
	for i := range cfg.Pools {
		if cfg.Pools[i].IOThreads == 0 {
			cfg.Pools[i].IOThreads = 1
		}
		if cfg.Pools[i].Sensor == "" {
			cfg.Pools[i].Sensor = cfg.Sensor
		}
	}
}

// Validate checks configuration constraints that do not need a detector profile.
//
// Rules:
//   - Detector is set
//   - Control IP parses and Port is in 1..65535
//   - At least one pool; every pool IP parses
//   - Pool IPs are unique
//   - SharedMemSize, IOThreads and NUMANodes are not negative
//   - Topology policy, when set, is ROUNDROBIN or ONE2ONE
//   - Topology modules is not negative
//
// Process counts are checked when pools are built so that the failure carries
// types.ErrInvalidProcessCount.
//
// Returns:
//   - error: types.ErrInvalidConfig joined with every violation, nil if valid
func (cfg *Config) Validate() error {
	var errs []error

	if cfg.Detector == "" {
		errs = append(errs, errors.New("detector is required"))
	}
	if net.ParseIP(cfg.Control.IP) == nil {
		errs = append(errs, fmt.Errorf("control ip %q is not an IP address", cfg.Control.IP))
	}
	if cfg.Control.Port <= 0 || cfg.Control.Port > 65535 {
		errs = append(errs, fmt.Errorf("control port %d out of range", cfg.Control.Port))
	}
	if len(cfg.Pools) == 0 {
		errs = append(errs, errors.New("at least one pool is required"))
	}

	seen := make(map[string]int, len(cfg.Pools))
	for i, p := range cfg.Pools {
		if net.ParseIP(p.IP) == nil {
			errs = append(errs, fmt.Errorf("pools[%d]: ip %q is not an IP address", i, p.IP))
		}
		if j, dup := seen[p.IP]; dup && p.IP != "" {
			errs = append(errs, fmt.Errorf("pools[%d]: ip %s already used by pools[%d]", i, p.IP, j))
		}
		seen[p.IP] = i
		if p.SharedMemSize < 0 {
			errs = append(errs, fmt.Errorf("pools[%d]: sharedMemSize must not be negative", i))
		}
		if p.IOThreads < 0 || p.NUMANodes < 0 {
			errs = append(errs, fmt.Errorf("pools[%d]: ioThreads and numaNodes must not be negative", i))
		}
	}

	switch cfg.Topology.Policy {
	case "", strategy.PolicyRoundRobin, strategy.PolicyOneToOne:
	default:
		errs = append(errs, fmt.Errorf("topology policy %q: want %s or %s",
			cfg.Topology.Policy, strategy.PolicyRoundRobin, strategy.PolicyOneToOne))
	}
	if cfg.Topology.Modules < 0 {
		errs = append(errs, fmt.Errorf("topology modules %d must not be negative", cfg.Topology.Modules))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

// ValidateWithWarnings logs non-fatal oddities in the build description.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	for i, p := range cfg.Pools {
		if p.SharedMemSize == 0 {
			logger.Warn("pool has no shared memory configured", "pool", i, "ip", p.IP)
		}
		if p.NUMANodes > p.Processes && p.Processes > 0 {
			logger.Warn("more NUMA nodes than processes, some nodes stay idle",
				"pool", i, "numaNodes", p.NUMANodes, "processes", p.Processes)
		}
	}
	if cfg.Topology.Policy == strategy.PolicyOneToOne && cfg.Topology.Modules != len(cfg.Pools) {
		logger.Warn("ONE2ONE topology needs one module per pool",
			"modules", cfg.Topology.Modules, "pools", len(cfg.Pools))
	}
}

// LoadConfig reads a YAML build description, applies defaults and validates it.
//
// Parameters:
//   - path: YAML file path
//
// Returns:
//   - *Config: Validated configuration
//   - error: Read, parse or validation failure
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes a YAML build description, applies defaults and validates it.
// Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w: %w", err, ErrInvalidConfig)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
