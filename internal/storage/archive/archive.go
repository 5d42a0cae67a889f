// Package archive persists finished analyses as JSON documents in a blob
// store, local filesystem or S3 compatible.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ftorres/b3score/internal/core"
)

// Storage is a flat blob store keyed by slash-separated paths.
type Storage interface {
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// Archiver writes analyses into a Storage under a per-stock layout:
// analyses/<code>/<timestamp>.json.
type Archiver struct {
	store Storage
}

// NewArchiver wraps a storage backend.
func NewArchiver(store Storage) *Archiver {
	return &Archiver{store: store}
}

func analysisPath(a core.QualityAnalysis) string {
	return fmt.Sprintf("analyses/%s/%s.json", a.Code, a.GeneratedAt.UTC().Format("20060102T150405Z"))
}

// SaveAnalysis archives one analysis.
func (ar *Archiver) SaveAnalysis(ctx context.Context, a core.QualityAnalysis) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	if err := ar.store.Write(ctx, analysisPath(a), data); err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	return nil
}

// History returns a stock's archived analyses, oldest first.
func (ar *Archiver) History(ctx context.Context, code string) ([]core.QualityAnalysis, error) {
	paths, err := ar.store.List(ctx, "analyses/"+code)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	sort.Strings(paths)

	out := make([]core.QualityAnalysis, 0, len(paths))
	for _, p := range paths {
		data, err := ar.store.Read(ctx, p)
		if err != nil {
			return nil, core.WrapError(core.ErrArchiveFailed, err)
		}
		var a core.QualityAnalysis
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, core.WrapError(core.ErrArchiveFailed,
				fmt.Errorf("corrupt archive entry %s: %w", p, err))
		}
		out = append(out, a)
	}
	return out, nil
}
