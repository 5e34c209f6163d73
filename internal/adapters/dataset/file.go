package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

// DefaultCandidates are the dataset file names tried, in order.
var DefaultCandidates = []string{
	"places.json.gz",
	"place.json.gz",
	"data-enriched.json",
	"places.json",
	"data.json",
}

// FileSource reads the first usable dataset file from a directory.
type FileSource struct {
	fsys       fs.FS
	name       string
	candidates []string
}

// NewFileSource scans dir for DefaultCandidates.
func NewFileSource(dir string) *FileSource {
	return NewFSSource(os.DirFS(dir), "file:"+dir, DefaultCandidates...)
}

// NewFSSource scans fsys for the given candidates (DefaultCandidates when none).
func NewFSSource(fsys fs.FS, name string, candidates ...string) *FileSource {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	return &FileSource{fsys: fsys, name: name, candidates: candidates}
}

func (s *FileSource) Name() string { return s.name }

// Load returns the places of the first candidate that exists, parses and is
// non-empty. Broken candidates are logged and skipped.
func (s *FileSource) Load(ctx context.Context) ([]domain.Place, error) {
	for _, candidate := range s.candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		places, err := s.loadOne(candidate)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			slog.WarnContext(ctx, "failed to load dataset candidate", "source", s.name, "file", candidate, "error", err)
			continue
		case len(places) == 0:
			continue
		}
		slog.InfoContext(ctx, "loaded dataset", "source", s.name, "file", candidate, "count", len(places))
		return places, nil
	}
	return nil, fmt.Errorf("%w: checked %s in %s", ErrNoDataset, strings.Join(s.candidates, ", "), s.name)
}

func (s *FileSource) loadOne(name string) ([]domain.Place, error) {
	f, err := s.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, strings.HasSuffix(name, ".gz"))
}
