package odinplan

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/odinplan/manifest"
	"github.com/arloliu/odinplan/render"
)

func TestPlanner_Write(t *testing.T) {
	dir := t.TempDir()
	cfg := excaliburConfig(2)
	cfg.Output.Dir = filepath.Join(dir, "build")
	cfg.Output.Bundle = filepath.Join(dir, "build.tar.lz4")

	var written []string
	hooks := &Hooks{
		OnArtifactWritten: func(_ context.Context, path string, size int) error {
			written = append(written, filepath.Base(path))
			require.Positive(t, size)

			return nil
		},
	}
	rec := newRecordingMetrics()

	planner, err := NewPlanner(cfg, WithHooks(hooks), WithMetrics(rec))
	require.NoError(t, err)
	plan, err := planner.Plan(context.Background())
	require.NoError(t, err)

	m, err := planner.Write(context.Background(), plan)
	require.NoError(t, err)

	// 4 processes x 4 files, server cfg and script, udp table.
	require.Len(t, m.Artifacts, 19)
	require.Equal(t, 19, rec.artifacts)
	require.Equal(t, "excalibur", m.Detector)
	require.NotEmpty(t, m.BuildID)
	require.Len(t, written, 20)
	require.Equal(t, manifest.FileName, written[len(written)-1])

	t.Run("files on disk", func(t *testing.T) {
		for _, name := range []string{
			"stFrameReceiver1.sh", "stFrameProcessor4.sh", "fr2.json", "fp3.json",
			render.ServerConfigName, render.ServerScriptName, "udp_excalibur.json", manifest.FileName,
		} {
			_, err := os.Stat(filepath.Join(cfg.Output.Dir, name))
			require.NoError(t, err, name)
		}

		info, err := os.Stat(filepath.Join(cfg.Output.Dir, "stFrameReceiver1.sh"))
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	})

	t.Run("excalibur udp file lists fems and nodes", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "udp_excalibur.json"))
		require.NoError(t, err)

		var parsed struct {
			FEMs  []render.FEM     `json:"fems"`
			Nodes []render.FEMNode `json:"nodes"`
		}
		require.NoError(t, json.Unmarshal(data, &parsed))
		require.Len(t, parsed.FEMs, 6)
		require.Len(t, parsed.Nodes, 4)
		require.Equal(t, "dest4", parsed.Nodes[3].Name)
	})

	t.Run("manifest on disk matches", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, manifest.FileName))
		require.NoError(t, err)

		parsed, err := manifest.Parse(data)
		require.NoError(t, err)
		require.Equal(t, m.BuildID, parsed.BuildID)
		require.Equal(t, m.Fingerprint, parsed.Fingerprint)
	})

	t.Run("bundle round trip", func(t *testing.T) {
		f, err := os.Open(cfg.Output.Bundle)
		require.NoError(t, err)
		defer f.Close()

		artifacts, err := manifest.ReadBundle(f)
		require.NoError(t, err)
		require.Len(t, artifacts, 20)
		require.NoError(t, m.Verify(artifacts[:len(artifacts)-1]))
	})

	t.Run("fingerprint stable across runs", func(t *testing.T) {
		again, err := planner.Plan(context.Background())
		require.NoError(t, err)

		artifacts, err := render.Artifacts(again.Build())
		require.NoError(t, err)
		other := manifest.Build("excalibur", artifacts)

		require.Equal(t, m.Fingerprint, other.Fingerprint)
		require.NotEqual(t, m.BuildID, other.BuildID)
	})
}

func TestPlanner_Write_NilPlan(t *testing.T) {
	planner, err := NewPlanner(excaliburConfig(2))
	require.NoError(t, err)

	_, err = planner.Write(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPlanner_Write_NoBundle(t *testing.T) {
	cfg := &Config{
		Detector: "xspress",
		Sensor:   "36CHAN",
		Pools:    []PoolConfig{{IP: "192.168.0.1", Processes: 3}},
		Output:   OutputConfig{Dir: t.TempDir()},
	}

	planner, err := NewPlanner(cfg)
	require.NoError(t, err)
	plan, err := planner.Plan(context.Background())
	require.NoError(t, err)

	m, err := planner.Write(context.Background(), plan)
	require.NoError(t, err)

	// xspress has no UDP fan-out table.
	require.Len(t, m.Artifacts, 3*4+2)
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "udp_xspress.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
