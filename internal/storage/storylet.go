package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/jwebster45206/story-director/pkg/storage"
	"github.com/jwebster45206/story-director/pkg/storylet"
)

// Storylet operations (filesystem-backed)

// ListStorylets returns the IDs of every valid storylet under <dataDir>/storylets.
func (r *RedisStorage) ListStorylets(ctx context.Context) ([]string, error) {
	all, err := r.loadStorylets()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// GetStorylet returns the storylet with the given ID.
func (r *RedisStorage) GetStorylet(ctx context.Context, id string) (*storylet.Storylet, error) {
	all, err := r.loadStorylets()
	if err != nil {
		return nil, err
	}
	s, ok := all[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrStoryletNotFound, id)
	}
	return s, nil
}

// ReloadStorylets drops the storylet cache so the next read goes back to disk.
func (r *RedisStorage) ReloadStorylets() {
	r.mu.Lock()
	r.storylets = nil
	r.mu.Unlock()
}

func (r *RedisStorage) loadStorylets() (map[string]*storylet.Storylet, error) {
	r.mu.RLock()
	cached := r.storylets
	r.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.storylets != nil {
		return r.storylets, nil
	}

	dir := filepath.Join(r.dataDir, "storylets")
	loaded := make(map[string]*storylet.Storylet)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				r.logger.Warn("Storylets directory not found", "path", dir)
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || !storylet.IsStoryletFile(path) {
			return nil
		}

		s, err := storylet.Load(path, r.bands)
		if err != nil {
			r.logger.Warn("Skipping invalid storylet file", "path", path, "error", err)
			return nil
		}
		if _, dup := loaded[s.ID]; dup {
			r.logger.Warn("Skipping duplicate storylet id", "path", path, "storylet_id", s.ID)
			return nil
		}
		for _, warning := range s.Lint() {
			r.logger.Warn("Storylet lint warning", "storylet_id", s.ID, "warning", warning)
		}
		loaded[s.ID] = s
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to walk storylets directory", "error", err)
		return nil, fmt.Errorf("failed to list storylets: %w", err)
	}

	r.logger.Info("Storylets loaded", "count", len(loaded), "path", dir)
	r.storylets = loaded
	return loaded, nil
}
