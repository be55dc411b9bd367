package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/odinplan/plugin"
	"github.com/arloliu/odinplan/types"
)

// marshalEntries renders a list of config entries as a 2-space indented
// JSON array with a trailing newline.
func marshalEntries(entries []map[string]any) ([]byte, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal config entries: %w", err)
	}

	return append(data, '\n'), nil
}

func frameReceiverConfig(b *Build, proc *types.WorkerProcess) ([]byte, error) {
	wp := proc.Pool()
	entry := map[string]any{
		"frame_ready_endpoint":   fmt.Sprintf("tcp://127.0.0.1:%d", proc.Local.Ready),
		"frame_release_endpoint": fmt.Sprintf("tcp://127.0.0.1:%d", proc.Local.Release),
		"shared_buffer_name":     fmt.Sprintf("odin_buf_%d", proc.Index),
		"decoder_type":           b.Profile.Decoder,
		"decoder_path":           b.Paths.Detector + "/prefix/lib",
		"decoder_config": map[string]any{
			"width":  b.Sensor.Width,
			"height": b.Sensor.Height,
		},
	}
	if wp != nil {
		entry["max_buffer_mem"] = wp.SharedMemSize
	}

	if proc.BaseUDPPort != nil {
		entry["rx_type"] = "udp"
		entry["rx_ports"] = rxPorts(*proc.BaseUDPPort, b.Profile.UDPPortsPerProcess)
		rxAddress := "0.0.0.0"
		if wp != nil && wp.FEMDest.IP != "" {
			rxAddress = wp.FEMDest.IP
		}
		entry["rx_address"] = rxAddress
	} else {
		entry["rx_type"] = "zmq"
	}

	return marshalEntries([]map[string]any{entry})
}

func rxPorts(base, count int) string {
	if count < 1 {
		count = 1
	}
	ports := make([]string, count)
	for i := range ports {
		ports[i] = strconv.Itoa(base + i)
	}

	return strings.Join(ports, ",")
}

func frameProcessorConfig(b *Build, proc *types.WorkerProcess, rank int, loadOrder []plugin.Plugin) ([]byte, error) {
	entries := []map[string]any{
		{
			"fr_setup": map[string]any{
				"fr_ready_cnxn":   fmt.Sprintf("tcp://127.0.0.1:%d", proc.ReadyPort),
				"fr_release_cnxn": fmt.Sprintf("tcp://127.0.0.1:%d", proc.ReleasePort),
			},
			"meta_endpoint": fmt.Sprintf("tcp://*:%d", proc.MetaPort),
		},
	}

	for _, p := range loadOrder {
		entries = append(entries, LoadEntry(p, b.Paths.OdinData))
	}

	edges, err := b.Chain.ConnectOrder(plugin.DefaultMode)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		entries = append(entries, ConnectEntry(e))
	}

	for _, mode := range b.Chain.Modes() {
		store, err := StoreEntry(b.Chain, mode)
		if err != nil {
			return nil, err
		}
		entries = append(entries, store)
	}

	hasWriter := false
	for _, p := range loadOrder {
		entries = append(entries, p.Entries(rank)...)
		hasWriter = hasWriter || p.Name == plugin.NameFileWriter
	}
	if hasWriter {
		entries = append(entries, map[string]any{
			plugin.NameFileWriter: map[string]any{
				"process": map[string]any{"number": len(b.Processes), "rank": rank},
			},
		})
	}

	if b.Mode != "" {
		entries = append(entries, map[string]any{"execute": map[string]any{"index": b.Mode}})
	}

	return marshalEntries(entries)
}

// LoadEntry returns the frame-processor entry that loads a plugin.
func LoadEntry(p plugin.Plugin, odinData string) map[string]any {
	return map[string]any{
		"plugin": map[string]any{
			"load": map[string]any{
				"index":   p.Name,
				"name":    p.ClassName,
				"library": p.Library(odinData),
			},
		},
	}
}

// ConnectEntry returns the frame-processor entry that connects a plugin to its source.
func ConnectEntry(e plugin.Edge) map[string]any {
	return map[string]any{
		"plugin": map[string]any{
			"connect": map[string]any{
				"index":      e.Plugin,
				"connection": e.Source,
			},
		},
	}
}

// StoreEntry returns the entry storing a named mode: disconnect everything,
// then connect the mode's edges in dependency order.
func StoreEntry(chain *plugin.Chain, mode string) (map[string]any, error) {
	edges, err := chain.ConnectOrder(mode)
	if err != nil {
		return nil, err
	}

	value := make([]map[string]any, 0, len(edges)+1)
	value = append(value, map[string]any{"plugin": map[string]any{"disconnect": "all"}})
	for _, e := range edges {
		value = append(value, ConnectEntry(e))
	}

	return map[string]any{"store": map[string]any{"index": mode, "value": value}}, nil
}

// UDPConfig renders a topology table with 2-space indentation and one
// destination object per line:
//
//	{
//	  "module01": {
//	    "nodes": [
//	      {"name":"em1","mac":"aa:bb:cc:dd:ee:ff","ipaddr":"10.0.2.2","port":61000,"subnet":24}
//	    ]
//	  }
//	}
func UDPConfig(t *types.TopologyTable) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("udp config needs a topology: %w", types.ErrTopologyMismatch)
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	keys := t.Keys()
	for i, key := range keys {
		fmt.Fprintf(&buf, "  %q: {\n    \"nodes\": [\n", key)
		if err := writeLines(&buf, "      ", t.Nodes(key)); err != nil {
			return nil, fmt.Errorf("module %s: %w", key, err)
		}
		buf.WriteString("    ]\n  }")
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")

	return buf.Bytes(), nil
}

// FEM is one front-end module entry of a fems layout file.
type FEM struct {
	Name           string `json:"name"`
	MAC            string `json:"mac"`
	IP             string `json:"ipaddr"`
	Port           int    `json:"port"`
	DestPortOffset int    `json:"dest_port_offset"`
}

// FEMNode is one receiving process of a fems layout file.
type FEMNode struct {
	Name string `json:"name"`
	MAC  string `json:"mac"`
	IP   string `json:"ipaddr"`
	Port int    `json:"port"`
}

// FEMs returns the default addressing of n front-end modules:
// fem{i}, 62:00:00:00:00:0{i}, 10.0.2.10{i}, port 6000{i}, offset i-1.
func FEMs(n int) []FEM {
	out := make([]FEM, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, FEM{
			Name:           fmt.Sprintf("fem%d", i),
			MAC:            fmt.Sprintf("62:00:00:00:00:%02x", i),
			IP:             fmt.Sprintf("10.0.2.%d", 100+i),
			Port:           60000 + i,
			DestPortOffset: i - 1,
		})
	}

	return out
}

// FEMConfig renders the fems layout: every FEM sends to every process, and
// processes are listed once in rank order as dest1..destN.
//
//	{
//	  "fems": [
//	    {"name":"fem1","mac":"62:00:00:00:00:01","ipaddr":"10.0.2.101","port":60001,"dest_port_offset":0}
//	  ],
//	  "nodes": [
//	    {"name":"dest1","mac":"aa:bb:cc:dd:ee:01","ipaddr":"10.0.2.1","port":61649}
//	  ]
//	}
//
// Parameters:
//   - femCount: Number of FEMs reading out the sensor
//   - procs: Rank-sorted processes with UDP ports
//
// Returns:
//   - []byte: File contents
//   - error: types.ErrInvalidConfig for femCount <= 0, types.ErrTopologyMismatch
//     for a process without a UDP port
func FEMConfig(femCount int, procs []*types.WorkerProcess) ([]byte, error) {
	if femCount <= 0 {
		return nil, fmt.Errorf("fem count must be positive, got %d: %w", femCount, types.ErrInvalidConfig)
	}

	nodes := make([]FEMNode, 0, len(procs))
	for i, proc := range procs {
		if proc.BaseUDPPort == nil {
			return nil, fmt.Errorf("process %s has no UDP port: %w", proc.Label(), types.ErrTopologyMismatch)
		}
		node := FEMNode{Name: fmt.Sprintf("dest%d", i+1), Port: *proc.BaseUDPPort}
		if wp := proc.Pool(); wp != nil {
			node.MAC, node.IP = wp.FEMDest.MAC, wp.FEMDest.IP
		}
		nodes = append(nodes, node)
	}

	var buf bytes.Buffer
	buf.WriteString("{\n  \"fems\": [\n")
	if err := writeLines(&buf, "    ", FEMs(femCount)); err != nil {
		return nil, err
	}
	buf.WriteString("  ],\n  \"nodes\": [\n")
	if err := writeLines(&buf, "    ", nodes); err != nil {
		return nil, err
	}
	buf.WriteString("  ]\n}\n")

	return buf.Bytes(), nil
}

// writeLines writes each item as compact JSON on its own indented line,
// comma separated.
func writeLines[T any](buf *bytes.Buffer, indent string, items []T) error {
	for i, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal udp entry %d: %w", i, err)
		}
		buf.WriteString(indent)
		buf.Write(line)
		if i < len(items)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}

	return nil
}
