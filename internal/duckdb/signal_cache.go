package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/regiontools/internal/signal"
)

// SignalCache manages gob-serialized signal intervals on disk, keyed by
// the base name of the source file:
//
//	{dir}/{name}.gob       (serialized intervals)
//	{dir}/{name}.gob.meta  (source file fingerprint)
type SignalCache struct {
	dir string
}

// NewSignalCache creates a signal cache rooted at dir.
func NewSignalCache(dir string) *SignalCache {
	return &SignalCache{dir: dir}
}

func (sc *SignalCache) gobPath(src FileFingerprint) string {
	return filepath.Join(sc.dir, filepath.Base(src.Path)+".gob")
}

func (sc *SignalCache) metaPath(src FileFingerprint) string {
	return sc.gobPath(src) + ".meta"
}

// Valid checks whether the cached intervals match the current source file.
func (sc *SignalCache) Valid(src FileFingerprint) bool {
	meta, err := sc.readMeta(src)
	if err != nil {
		return false
	}
	for _, kv := range src.metaPairs("source") {
		if meta[kv[0]] != kv[1] {
			return false
		}
	}
	if _, err := os.Stat(sc.gobPath(src)); err != nil {
		return false
	}
	return true
}

// Load reads the cached intervals for src.
func (sc *SignalCache) Load(src FileFingerprint) ([]signal.Interval, error) {
	f, err := os.Open(sc.gobPath(src))
	if err != nil {
		return nil, fmt.Errorf("open signal cache: %w", err)
	}
	defer f.Close()

	var ivs []signal.Interval
	if err := gob.NewDecoder(f).Decode(&ivs); err != nil {
		return nil, fmt.Errorf("decode signal cache: %w", err)
	}
	return ivs, nil
}

// Write serializes intervals read from src to disk.
func (sc *SignalCache) Write(src FileFingerprint, ivs []signal.Interval) error {
	if err := os.MkdirAll(sc.dir, 0755); err != nil {
		return fmt.Errorf("create signal cache directory: %w", err)
	}

	path := sc.gobPath(src)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create signal cache: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(ivs); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode signal cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close signal cache: %w", err)
	}
	return sc.writeMeta(src)
}

// Clear removes the cached files for src.
func (sc *SignalCache) Clear(src FileFingerprint) {
	os.Remove(sc.gobPath(src))
	os.Remove(sc.metaPath(src))
}

func (sc *SignalCache) writeMeta(src FileFingerprint) error {
	var lines []string
	for _, kv := range src.metaPairs("source") {
		lines = append(lines, kv[0]+"="+kv[1])
	}
	lines = append(lines, "created_at="+time.Now().UTC().Format(time.RFC3339), "")
	return os.WriteFile(sc.metaPath(src), []byte(strings.Join(lines, "\n")), 0644)
}

func (sc *SignalCache) readMeta(src FileFingerprint) (map[string]string, error) {
	data, err := os.ReadFile(sc.metaPath(src))
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}

// LoadSignalCached loads a bedGraph or bigWig file, going through the gob
// cache in cacheDir when one is given. A stale or unreadable cache is
// rebuilt.
func LoadSignalCached(cacheDir, path string, logger *zap.Logger) (*signal.BedGraphSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheDir == "" {
		return signal.Load(path)
	}

	fp, err := StatFile(path)
	if err != nil {
		return nil, fmt.Errorf("stat signal file: %w", err)
	}

	sc := NewSignalCache(cacheDir)
	if sc.Valid(fp) {
		start := time.Now()
		ivs, err := sc.Load(fp)
		if err == nil {
			var src *signal.BedGraphSource
			if src, err = signal.NewBedGraphSource(ivs); err == nil {
				logger.Info("loaded signal from cache",
					zap.String("path", path),
					zap.Int("intervals", len(ivs)),
					zap.Duration("elapsed", time.Since(start)))
				return src, nil
			}
		}
		logger.Warn("signal cache unreadable, rebuilding", zap.Error(err))
		sc.Clear(fp)
	}

	src, err := signal.Load(path)
	if err != nil {
		return nil, err
	}
	if err := sc.Write(fp, src.Intervals()); err != nil {
		logger.Warn("could not write signal cache", zap.String("path", path), zap.Error(err))
	}
	return src, nil
}
