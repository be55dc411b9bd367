package detector

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/arloliu/odinplan/plugin"
	"github.com/arloliu/odinplan/strategy"
	"github.com/arloliu/odinplan/types"
)

// Adapter is an extra odin-control adapter loaded next to fp and fr.
type Adapter struct {
	Name   string
	Module string
}

// UDPLayout selects the schema of udp_<name>.json.
type UDPLayout string

const (
	// UDPLayoutNone writes no fan-out file.
	UDPLayoutNone UDPLayout = ""

	// UDPLayoutModules writes the planned topology table keyed module01..moduleNN.
	UDPLayoutModules UDPLayout = "modules"

	// UDPLayoutFEMs writes a fems list sized by the sensor plus one flat nodes list.
	UDPLayoutFEMs UDPLayout = "fems"
)

// Profile describes one detector family.
type Profile struct {
	// Name is the family name used in file names (udp_<name>.json).
	Name string

	// SupportedNodeCounts lists the total process counts with shipped templates.
	SupportedNodeCounts []int

	// Sensors maps sensor option names to pixel geometry.
	Sensors map[string]types.SensorShape

	// Decoder is the frame-receiver decoder type.
	Decoder string

	// UDPBasePort is the first receive port; 0 means no UDP fan-out.
	UDPBasePort int

	// UDPPortStep is the per-process port advance within a pool.
	UDPPortStep int

	// UDPPortsPerProcess is the number of receive ports each process listens on.
	UDPPortsPerProcess int

	// UDPLayout selects the fan-out file schema.
	UDPLayout UDPLayout

	// FEMs maps sensor option names to the number of FEMs reading them out.
	// Only used by UDPLayoutFEMs.
	FEMs map[string]int

	// RequiresFEMDest reports whether pools must carry a FEM destination link.
	RequiresFEMDest bool

	// DefaultPolicy is the topology policy used when none is configured.
	DefaultPolicy string

	// Chain builds the default plugin chain.
	Chain plugin.ChainBuilder

	// Adapters are the detector specific control adapters.
	Adapters []Adapter
}

// HasUDP reports whether the family receives UDP from FEMs and needs a fan-out table.
func (p *Profile) HasUDP() bool {
	return p.UDPBasePort > 0
}

// Sensor resolves a sensor option name.
//
// Returns:
//   - types.SensorShape: Sensor geometry
//   - error: types.ErrInvalidConfig listing the known options
func (p *Profile) Sensor(name string) (types.SensorShape, error) {
	shape, ok := p.Sensors[name]
	if !ok {
		return types.SensorShape{}, fmt.Errorf("%s sensor %q not one of %v: %w",
			p.Name, name, p.SensorNames(), types.ErrInvalidConfig)
	}

	return shape, nil
}

// FEMCount returns the number of FEMs reading out a sensor option, 0 if unknown.
func (p *Profile) FEMCount(sensor string) int {
	return p.FEMs[sensor]
}

// SensorNames returns the sensor option names in sorted order.
func (p *Profile) SensorNames() []string {
	out := make([]string, 0, len(p.Sensors))
	for name := range p.Sensors {
		out = append(out, name)
	}
	sort.Strings(out)

	return out
}

// AdapterNames returns every control adapter name, fp and fr first.
func (p *Profile) AdapterNames() []string {
	out := []string{"fp", "fr"}
	for _, a := range p.Adapters {
		out = append(out, a.Name)
	}

	return out
}

// Supports reports whether count is a supported node count.
func (p *Profile) Supports(count int) bool {
	return slices.Contains(p.SupportedNodeCounts, count)
}

var profiles = map[string]*Profile{
	"excalibur": {
		Name:                "excalibur",
		Decoder:             "Excalibur",
		SupportedNodeCounts: []int{2, 4, 8},
		Sensors: map[string]types.SensorShape{
			"1M": {Width: 2048, Height: 512},
			"3M": {Width: 2048, Height: 1536},
		},
		UDPBasePort:        61649,
		UDPPortStep:        6,
		UDPPortsPerProcess: 6,
		UDPLayout:          UDPLayoutFEMs,
		FEMs:               map[string]int{"1M": 2, "3M": 6},
		RequiresFEMDest:    true,
		DefaultPolicy:      strategy.PolicyRoundRobin,
		Chain:              plugin.ExcaliburChain,
		Adapters:           []Adapter{{Name: "excalibur", Module: "excalibur.adapter.ExcaliburAdapter"}},
	},
	"tristan": {
		Name:                "tristan",
		Decoder:             "LATRD",
		SupportedNodeCounts: []int{4, 8},
		Sensors: map[string]types.SensorShape{
			"1M":  {Width: 2048, Height: 512},
			"10M": {Width: 4096, Height: 2560},
		},
		UDPBasePort:        61649,
		UDPPortStep:        1,
		UDPPortsPerProcess: 1,
		RequiresFEMDest:    true,
		DefaultPolicy:      strategy.PolicyRoundRobin,
		Chain:              plugin.TristanChain,
		Adapters:           []Adapter{{Name: "tristan", Module: "latrd.detector.tristan_control_adapter.TristanControlAdapter"}},
	},
	"eiger": {
		Name:                "eiger",
		Decoder:             "Eiger",
		SupportedNodeCounts: []int{1, 2, 4, 8},
		Sensors: map[string]types.SensorShape{
			"4M":  {Width: 2070, Height: 2167},
			"9M":  {Width: 3110, Height: 3269},
			"16M": {Width: 4150, Height: 4371},
		},
		Chain: plugin.EigerChain,
		Adapters: []Adapter{
			{Name: "eiger", Module: "eiger.eiger_adapter.EigerAdapter"},
			{Name: "eiger_fan", Module: "eiger.eiger_fan_adapter.EigerFanAdapter"},
		},
	},
	"arc": {
		Name:                "arc",
		Decoder:             "Arc",
		SupportedNodeCounts: []int{1, 2, 4},
		Sensors: map[string]types.SensorShape{
			"1FEM": {Width: 768, Height: 3072},
		},
		UDPBasePort:        61000,
		UDPPortStep:        1,
		UDPPortsPerProcess: 1,
		UDPLayout:          UDPLayoutModules,
		RequiresFEMDest:    true,
		DefaultPolicy:      strategy.PolicyRoundRobin,
		Chain:              plugin.ArcChain,
		Adapters:           []Adapter{{Name: "arc", Module: "arc.adapter.ArcAdapter"}},
	},
	"xspress": {
		Name:                "xspress",
		Decoder:             "Xspress",
		SupportedNodeCounts: []int{1, 2, 3, 4, 5, 6, 7, 8, 9},
		Sensors: map[string]types.SensorShape{
			"36CHAN": {Width: 4096, Height: 36},
		},
		Chain:    plugin.XspressChain,
		Adapters: []Adapter{{Name: "xspress", Module: "xspress_detector.control.adapter.XspressAdapter"}},
	},
}

// Lookup returns the built-in profile for a detector family (case-insensitive).
//
// The returned profile is a copy and may be modified by the caller.
//
// Returns:
//   - *Profile: Detector profile
//   - error: types.ErrUnknownDetector if the family is not built in
func Lookup(name string) (*Profile, error) {
	p, ok := profiles[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("detector %q not one of %v: %w", name, Names(), types.ErrUnknownDetector)
	}

	cp := *p
	cp.SupportedNodeCounts = slices.Clone(p.SupportedNodeCounts)
	cp.Adapters = slices.Clone(p.Adapters)
	cp.Sensors = make(map[string]types.SensorShape, len(p.Sensors))
	for k, v := range p.Sensors {
		cp.Sensors[k] = v
	}
	if p.FEMs != nil {
		cp.FEMs = make(map[string]int, len(p.FEMs))
		for k, v := range p.FEMs {
			cp.FEMs[k] = v
		}
	}

	return &cp, nil
}

// Names returns the built-in family names in sorted order.
func Names() []string {
	out := make([]string, 0, len(profiles))
	for name := range profiles {
		out = append(out, name)
	}
	sort.Strings(out)

	return out
}
