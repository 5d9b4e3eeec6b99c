package crawler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/site-snapshot/pkg/config"
	"github.com/Sriram-PR/site-snapshot/pkg/utils"
)

// OutputManager writes the four JSON artifacts of a finished crawl.
type OutputManager struct {
	log *logrus.Entry
	cfg *config.AppConfig
}

// artifact is one encoded output file waiting to be committed
type artifact struct {
	name     string
	path     string
	tempPath string
	data     []byte
}

// NewOutputManager creates an OutputManager for cfg.OutputDir.
func NewOutputManager(cfg *config.AppConfig, log *logrus.Entry) *OutputManager {
	return &OutputManager{log: log, cfg: cfg}
}

// Paths returns the destination of each artifact in write order.
func (om *OutputManager) Paths() []string {
	return []string{
		filepath.Join(om.cfg.OutputDir, om.cfg.SnapshotFilename),
		filepath.Join(om.cfg.OutputDir, om.cfg.ProductsFilename),
		filepath.Join(om.cfg.OutputDir, om.cfg.ArticlesFilename),
		filepath.Join(om.cfg.OutputDir, om.cfg.DocumentsFilename),
	}
}

// Save encodes every artifact, stages each in a temp file next to its
// destination and renames them into place. Nothing is renamed unless all
// four encoded and staged cleanly.
func (om *OutputManager) Save(result *Result) error {
	if result == nil {
		return fmt.Errorf("%w: no crawl result to save", utils.ErrFilesystem)
	}

	if err := os.MkdirAll(om.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("%w: creating output directory '%s': %w", utils.ErrFilesystem, om.cfg.OutputDir, err)
	}

	paths := om.Paths()
	payloads := []struct {
		name string
		v    any
	}{
		{"snapshot", result.Snapshot},
		{"products", result.Products},
		{"articles", result.Articles},
		{"documents", result.Documents},
	}

	artifacts := make([]*artifact, 0, len(payloads))
	cleanup := func() {
		for _, a := range artifacts {
			if a.tempPath != "" {
				_ = os.Remove(a.tempPath)
			}
		}
	}

	for i, p := range payloads {
		data, err := encodeJSON(p.v)
		if err != nil {
			cleanup()
			return fmt.Errorf("%w: encoding %s: %w", utils.ErrFilesystem, p.name, err)
		}
		a := &artifact{name: p.name, path: paths[i], data: data}
		artifacts = append(artifacts, a)
		if err := om.stage(a); err != nil {
			cleanup()
			return err
		}
	}

	for _, a := range artifacts {
		if err := os.Rename(a.tempPath, a.path); err != nil {
			cleanup()
			return fmt.Errorf("%w: replacing '%s': %w", utils.ErrFilesystem, a.path, err)
		}
		a.tempPath = ""
		om.log.WithFields(logrus.Fields{
			"artifact": a.name,
			"bytes":    len(a.data),
		}).Infof("Wrote %s", a.path)
	}

	om.log.WithFields(logrus.Fields{
		"pages":     len(result.Snapshot.Pages),
		"products":  len(result.Products),
		"articles":  len(result.Articles),
		"documents": len(result.Documents),
	}).Infof("Saved snapshot to %s", om.cfg.OutputDir)
	return nil
}

// stage writes a.data to a temp file in the destination directory
func (om *OutputManager) stage(a *artifact) error {
	tmp, err := os.CreateTemp(filepath.Dir(a.path), "."+filepath.Base(a.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file for '%s': %w", utils.ErrFilesystem, a.path, err)
	}
	a.tempPath = tmp.Name()

	if _, err := tmp.Write(a.data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing '%s': %w", utils.ErrFilesystem, a.tempPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: syncing '%s': %w", utils.ErrFilesystem, a.tempPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing '%s': %w", utils.ErrFilesystem, a.tempPath, err)
	}
	if err := os.Chmod(a.tempPath, 0644); err != nil {
		return fmt.Errorf("%w: chmod '%s': %w", utils.ErrFilesystem, a.tempPath, err)
	}
	return nil
}

// encodeJSON renders v with 2-space indentation, literal <>& and a trailing newline
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
