package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/arloliu/odinplan/types"
)

var frameReceiverTmpl = template.Must(template.New("fr").Parse(`#!/bin/bash

SCRIPT_DIR="$( cd "$( dirname "$0" )" && pwd )"

{{.NUMA}}{{.OdinData}}/prefix/bin/frameReceiver --sharedbuf=odin_buf_{{.BufferIdx}} -m {{.SharedMem}} --iothreads {{.IOThreads}} --ctrl=tcp://0.0.0.0:{{.CtrlPort}} --ready=tcp://127.0.0.1:{{.ReadyPort}} --release=tcp://127.0.0.1:{{.ReleasePort}} --json_file=$SCRIPT_DIR/fr{{.Number}}.json --logconfig $SCRIPT_DIR/{{.LogConfig}}
`))

var frameProcessorTmpl = template.Must(template.New("fp").Parse(`#!/bin/bash

SCRIPT_DIR="$( cd "$( dirname "$0" )" && pwd )"

export HDF5_PLUGIN_PATH={{.HDF5Filters}}

{{.NUMA}}{{.OdinData}}/prefix/bin/frameProcessor --ctrl=tcp://0.0.0.0:{{.CtrlPort}} --ready=tcp://127.0.0.1:{{.ReadyPort}} --release=tcp://127.0.0.1:{{.ReleasePort}} --json_file=$SCRIPT_DIR/fp{{.Number}}.json --logconfig $SCRIPT_DIR/{{.LogConfig}}
`))

var serverTmpl = template.Must(template.New("server").Parse(`#!/bin/bash

SCRIPT_DIR="$( cd "$( dirname "$0" )" && pwd )"

{{.OdinServer}} --config=$SCRIPT_DIR/{{.Config}} --logging=error --access_logging=ERROR
`))

type scriptMacros struct {
	Number      int
	OdinData    string
	HDF5Filters string
	BufferIdx   int
	SharedMem   int64
	IOThreads   int
	CtrlPort    int
	ReadyPort   int
	ReleasePort int
	LogConfig   string
	NUMA        string
}

// NUMACall returns the numactl prefix for the idx-th (0-based) process of a
// pool spread over nodes NUMA nodes, or "" when nodes is 0.
func NUMACall(idx, nodes int) string {
	if nodes <= 0 {
		return ""
	}
	node := idx % nodes

	return fmt.Sprintf("numactl --membind=%d --cpunodebind=%d ", node, node)
}

func macrosFor(b *Build, proc *types.WorkerProcess) scriptMacros {
	wp := proc.Pool()
	m := scriptMacros{
		Number:      proc.Number(),
		OdinData:    b.Paths.OdinData,
		HDF5Filters: b.Paths.HDF5Filters,
		BufferIdx:   proc.Index,
		ReadyPort:   proc.Local.Ready,
		ReleasePort: proc.Local.Release,
		LogConfig:   b.Paths.LogConfig,
	}
	if wp != nil {
		m.SharedMem = wp.SharedMemSize
		m.IOThreads = wp.IOThreads
		m.NUMA = NUMACall(proc.Index-1, wp.NUMANodes)
	}

	return m
}

func frameReceiverScript(b *Build, proc *types.WorkerProcess) ([]byte, error) {
	m := macrosFor(b, proc)
	m.CtrlPort = proc.Local.FRCtrl

	return execute(frameReceiverTmpl, m)
}

func frameProcessorScript(b *Build, proc *types.WorkerProcess) ([]byte, error) {
	m := macrosFor(b, proc)
	m.CtrlPort = proc.Local.FPCtrl

	return execute(frameProcessorTmpl, m)
}

func serverScript(b *Build) ([]byte, error) {
	return execute(serverTmpl, struct {
		OdinServer string
		Config     string
	}{b.Paths.OdinServer, ServerConfigName})
}

func execute(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", t.Name(), err)
	}

	return buf.Bytes(), nil
}
