package run

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/shutter/builder/lightbox"
	"github.com/Kush-Singh-26/shutter/builder/metrics"
	"github.com/Kush-Singh-26/shutter/builder/utils"
)

// writeAssets emits the default stylesheet and the lightbox script, then
// copies the passthrough dirs over them so project files win.
func (b *Builder) writeAssets(s *site, m *metrics.BuildMetrics) error {
	cfg := b.cfg

	if err := s.rnd.WriteStylesheet(cfg.OutputDir); err != nil {
		return fmt.Errorf("failed to write stylesheet: %w", err)
	}

	js, err := utils.TransformJS("lightbox.js", lightbox.Script(), cfg.Compress)
	if err != nil {
		return fmt.Errorf("failed to build lightbox script: %w", err)
	}
	if err := utils.WriteFileVFS(b.DestFs, filepath.Join(cfg.OutputDir, lightbox.ScriptPath), js); err != nil {
		return err
	}

	srcs := make([]string, 0, len(cfg.Passthrough))
	for src := range cfg.Passthrough {
		srcs = append(srcs, src)
	}
	sort.Strings(srcs)

	for _, src := range srcs {
		if exists, _ := afero.DirExists(b.SourceFs, src); !exists {
			b.logger.Debug("Passthrough source missing", "src", src)
			continue
		}
		dst := filepath.Join(cfg.OutputDir, cfg.Passthrough[src])
		n, err := utils.CopyDirVFS(b.SourceFs, b.DestFs, src, dst, cfg.Build.RenderWorkers, nil)
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", src, err)
		}
		m.PassthroughCopied.Add(int64(n))
	}
	if n := m.PassthroughCopied.Load(); n > 0 {
		fmt.Printf("   📁 Copied %d passthrough files\n", n)
	}
	return nil
}
