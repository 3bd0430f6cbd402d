package archive

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const pruneInterval = time.Hour

// Pruner deletes aged transcript files and caps the total file count,
// newest kept first.
type Pruner struct {
	dir      string
	maxAge   time.Duration
	maxFiles int
}

func NewPruner(dir string, maxAgeDays, maxFiles int) *Pruner {
	return &Pruner{
		dir:      dir,
		maxAge:   time.Duration(maxAgeDays) * 24 * time.Hour,
		maxFiles: maxFiles,
	}
}

// Run prunes once immediately and then hourly until ctx is cancelled.
func (p *Pruner) Run(ctx context.Context) {
	p.pruneOnce(time.Now())
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pruneOnce(time.Now())
		}
	}
}

func (p *Pruner) pruneOnce(now time.Time) {
	files, err := p.listTranscripts()
	if err != nil {
		slog.Warn("retention prune skipped", "error", err)
		return
	}

	removed := 0
	kept := files[:0]
	for _, f := range files {
		if p.maxAge > 0 && now.Sub(f.modTime) > p.maxAge {
			p.remove(f.path)
			removed++
			continue
		}
		kept = append(kept, f)
	}

	if p.maxFiles > 0 && len(kept) > p.maxFiles {
		// Oldest first; trim from the front.
		sort.Slice(kept, func(i, j int) bool { return kept[i].modTime.Before(kept[j].modTime) })
		for _, f := range kept[:len(kept)-p.maxFiles] {
			p.remove(f.path)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("pruned old transcripts", "removed", removed, "dir", p.dir)
	}
}

type transcriptFile struct {
	path    string
	modTime time.Time
}

func (p *Pruner) listTranscripts() ([]transcriptFile, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, err
	}
	files := make([]transcriptFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, transcriptFile{
			path:    filepath.Join(p.dir, e.Name()),
			modTime: info.ModTime(),
		})
	}
	return files, nil
}

func (p *Pruner) remove(path string) {
	if err := os.Remove(path); err != nil {
		slog.Warn("failed to remove old transcript", "path", path, "error", err)
	}
}
