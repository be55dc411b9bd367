package manifest

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/odinplan/render"
)

// WriteBundle writes artifacts as a tar stream compressed with lz4.
//
// Parameters:
//   - w: Destination (file, buffer, ...); not closed
//   - artifacts: Files to pack, in order
//
// Returns:
//   - error: Compression or write failure
func WriteBundle(w io.Writer, artifacts []render.Artifact) error {
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4.Level5)); err != nil {
		return fmt.Errorf("configure lz4: %w", err)
	}

	tw := tar.NewWriter(zw)
	for _, a := range artifacts {
		hdr := &tar.Header{
			Name:     a.Name,
			Mode:     int64(a.Mode.Perm()),
			Size:     int64(len(a.Data)),
			Typeflag: tar.TypeReg,
			Format:   tar.FormatPAX,
		}
		if hdr.Mode == 0 {
			hdr.Mode = 0o644
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("bundle header %s: %w", a.Name, err)
		}
		if _, err := tw.Write(a.Data); err != nil {
			return fmt.Errorf("bundle write %s: %w", a.Name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close lz4: %w", err)
	}

	return nil
}

// ReadBundle unpacks a bundle written by WriteBundle.
func ReadBundle(r io.Reader) ([]render.Artifact, error) {
	tr := tar.NewReader(lz4.NewReader(r))

	var out []render.Artifact
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read bundle: %w", err)
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read bundle entry %s: %w", hdr.Name, err)
		}
		out = append(out, render.Artifact{Name: hdr.Name, Data: data, Mode: hdr.FileInfo().Mode().Perm()})
	}
}
