package render

import (
	"fmt"

	"github.com/arloliu/odinplan/control"
	"github.com/arloliu/odinplan/detector"
	"github.com/arloliu/odinplan/plugin"
	"github.com/arloliu/odinplan/types"
)

// Paths holds install locations substituted into generated files.
type Paths struct {
	OdinData    string
	Detector    string
	HDF5Filters string
	LogConfig   string
	OdinServer  string
}

// Build is everything the renderer needs from a plan.
type Build struct {
	Profile   *detector.Profile
	Control   *control.Aggregate
	Processes []*types.WorkerProcess
	Sensor    types.SensorShape
	Chain     *plugin.Chain
	Mode      string
	Topology  *types.TopologyTable
	Paths     Paths

	// SensorName is the sensor option, used to size the fems layout.
	SensorName string
}

// File names of the per-build artifacts.
const (
	ServerConfigName = "odin_server.cfg"
	ServerScriptName = "stOdinServer.sh"
)

// FrameReceiverScriptName returns the FR startup script name of a process.
func FrameReceiverScriptName(number int) string {
	return fmt.Sprintf("stFrameReceiver%d.sh", number)
}

// FrameProcessorScriptName returns the FP startup script name of a process.
func FrameProcessorScriptName(number int) string {
	return fmt.Sprintf("stFrameProcessor%d.sh", number)
}

// FrameReceiverConfigName returns the FR JSON config name of a process.
func FrameReceiverConfigName(number int) string {
	return fmt.Sprintf("fr%d.json", number)
}

// FrameProcessorConfigName returns the FP JSON config name of a process.
func FrameProcessorConfigName(number int) string {
	return fmt.Sprintf("fp%d.json", number)
}

// UDPConfigName returns the fan-out table file name of a detector.
func UDPConfigName(detector string) string {
	return fmt.Sprintf("udp_%s.json", detector)
}

// Artifacts renders every file of a build.
//
// Per process, in rank order: FR script, FP script, FR JSON, FP JSON. Then
// odin_server.cfg, stOdinServer.sh and, when the detector has a UDP layout,
// udp_<detector>.json in that layout.
//
// Parameters:
//   - b: Planned build with ranks assigned
//
// Returns:
//   - []Artifact: Rendered files
//   - error: types.ErrRankNotAssigned for unranked processes, or a template failure
func Artifacts(b *Build) ([]Artifact, error) {
	if b == nil || b.Profile == nil || b.Control == nil || b.Chain == nil {
		return nil, fmt.Errorf("incomplete build: %w", types.ErrInvalidConfig)
	}

	loadOrder, err := b.Chain.LoadOrder()
	if err != nil {
		return nil, err
	}

	out := make([]Artifact, 0, 4*len(b.Processes)+3)
	for _, proc := range b.Processes {
		rank, err := proc.RankValue()
		if err != nil {
			return nil, err
		}
		number := rank + 1

		frScript, err := frameReceiverScript(b, proc)
		if err != nil {
			return nil, err
		}
		fpScript, err := frameProcessorScript(b, proc)
		if err != nil {
			return nil, err
		}
		frJSON, err := frameReceiverConfig(b, proc)
		if err != nil {
			return nil, err
		}
		fpJSON, err := frameProcessorConfig(b, proc, rank, loadOrder)
		if err != nil {
			return nil, err
		}

		out = append(out,
			Artifact{Name: FrameReceiverScriptName(number), Data: frScript, Mode: scriptMode},
			Artifact{Name: FrameProcessorScriptName(number), Data: fpScript, Mode: scriptMode},
			Artifact{Name: FrameReceiverConfigName(number), Data: frJSON, Mode: fileMode},
			Artifact{Name: FrameProcessorConfigName(number), Data: fpJSON, Mode: fileMode},
		)
	}

	cfg, err := serverConfig(b)
	if err != nil {
		return nil, err
	}
	script, err := serverScript(b)
	if err != nil {
		return nil, err
	}
	out = append(out,
		Artifact{Name: ServerConfigName, Data: cfg, Mode: fileMode},
		Artifact{Name: ServerScriptName, Data: script, Mode: scriptMode},
	)

	udp, err := udpConfig(b)
	if err != nil {
		return nil, err
	}
	if udp != nil {
		out = append(out, Artifact{Name: UDPConfigName(b.Profile.Name), Data: udp, Mode: fileMode})
	}

	return out, nil
}

// udpConfig renders the fan-out file in the detector's layout, nil when the
// detector writes none.
func udpConfig(b *Build) ([]byte, error) {
	switch b.Profile.UDPLayout {
	case detector.UDPLayoutNone:
		return nil, nil
	case detector.UDPLayoutModules:
		return UDPConfig(b.Topology)
	case detector.UDPLayoutFEMs:
		n := b.Profile.FEMCount(b.SensorName)
		if n == 0 {
			return nil, fmt.Errorf("%s sensor %q has no FEM count: %w", b.Profile.Name, b.SensorName, types.ErrInvalidConfig)
		}

		return FEMConfig(n, b.Processes)
	default:
		return nil, fmt.Errorf("unknown udp layout %q: %w", b.Profile.UDPLayout, types.ErrInvalidConfig)
	}
}
