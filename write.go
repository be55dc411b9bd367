package odinplan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arloliu/odinplan/manifest"
	"github.com/arloliu/odinplan/render"
)

// Write renders plan and writes every artifact plus manifest.yaml to the
// configured output directory. When an output bundle is configured the same
// files are also written as an lz4-compressed tar.
//
// Parameters:
//   - ctx: Passed to hooks
//   - plan: Result of Plan
//
// Returns:
//   - *manifest.Manifest: Fingerprints of the written artifacts
//   - error: Render or I/O failure
func (p *Planner) Write(ctx context.Context, plan *Plan) (*manifest.Manifest, error) {
	m, err := p.write(ctx, plan)
	if err != nil {
		p.logger.Error("writing artifacts failed", "dir", p.cfg.Output.Dir, "error", err)
		p.callOnError(ctx, err)

		return nil, err
	}

	return m, nil
}

func (p *Planner) write(ctx context.Context, plan *Plan) (*manifest.Manifest, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is required: %w", ErrInvalidConfig)
	}

	start := time.Now()
	artifacts, err := render.Artifacts(plan.Build())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageRender, err)
	}
	p.metrics.RecordArtifacts(len(artifacts))
	p.metrics.RecordStageDuration(StageRender, time.Since(start).Seconds())

	start = time.Now()
	m := manifest.Build(plan.Profile.Name, artifacts)
	data, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	all := append(artifacts[:len(artifacts):len(artifacts)], render.Artifact{Name: manifest.FileName, Data: data, Mode: 0o644})

	dir := p.cfg.Output.Dir
	if err := render.WriteDir(dir, all); err != nil {
		return nil, fmt.Errorf("%s: %w", StageWrite, err)
	}
	for _, a := range all {
		if herr := p.hooks.OnArtifactWritten(ctx, filepath.Join(dir, a.Name), len(a.Data)); herr != nil {
			p.logger.Warn("artifact hook failed", "artifact", a.Name, "error", herr)
		}
	}

	if bundle := p.cfg.Output.Bundle; bundle != "" {
		if err := writeBundle(bundle, all); err != nil {
			return nil, fmt.Errorf("%s: %w", StageWrite, err)
		}
		p.logger.Info("bundle written", "path", bundle)
	}
	p.metrics.RecordStageDuration(StageWrite, time.Since(start).Seconds())

	p.logger.Info("artifacts written",
		"dir", dir,
		"count", len(all),
		"buildID", m.BuildID,
		"fingerprint", m.Fingerprint,
	)

	return m, nil
}

func writeBundle(path string, artifacts []render.Artifact) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bundle %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close bundle %s: %w", path, cerr)
		}
	}()

	return manifest.WriteBundle(f, artifacts)
}
