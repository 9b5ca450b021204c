package playlist

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"spotbatch/internal/shared"
)

// DefaultBatchSize is the number of entries per batch file.
const DefaultBatchSize = 100

// Split partitions entries into contiguous batches of at most size entries.
// Every entry lands in exactly one batch and order is preserved within and
// across batches; the last batch may be short.
func Split(entries []Entry, size int) ([][]Entry, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", shared.ErrInvalidArgument, size)
	}

	batches := make([][]Entry, 0, (len(entries)+size-1)/size)
	for i := 0; i < len(entries); i += size {
		end := min(i+size, len(entries))
		batches = append(batches, entries[i:end])
	}

	return batches, nil
}

// WriteBatches writes each batch as "{base}_{index}.m3u" (1-indexed) under
// dir, creating the directory if absent. Returns the written file paths in
// index order.
func WriteBatches(batches [][]Entry, dir, base string) ([]string, error) {
	paths := make([]string, 0, len(batches))

	for i, batch := range batches {
		path := filepath.Join(dir, fmt.Sprintf("%s_%d.m3u", base, i+1))
		if err := WriteFile(path, batch); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// BatchFiles lists the .m3u files in dir, ordered by trailing batch index
// when present ("tracks_2.m3u" before "tracks_10.m3u") and lexically
// otherwise. Returns ErrNoBatchFiles when the directory holds none.
func BatchFiles(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.m3u"))
	if err != nil {
		return nil, fmt.Errorf("failed to list batch files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no .m3u files in %s", shared.ErrNoBatchFiles, dir)
	}

	sort.Slice(paths, func(i, j int) bool {
		si, ni := splitIndex(paths[i])
		sj, nj := splitIndex(paths[j])
		if si != sj {
			return si < sj
		}
		return ni < nj
	})

	return paths, nil
}

// splitIndex separates "dir/base_12.m3u" into "base" and 12. Files without a
// numeric suffix keep their full stem and index 0.
func splitIndex(path string) (string, int) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	i := strings.LastIndex(stem, "_")
	if i < 0 {
		return stem, 0
	}
	if n, err := strconv.Atoi(stem[i+1:]); err == nil {
		return stem[:i], n
	}
	return stem, 0
}

// DeriveOutputDir returns the default batch directory for an input playlist:
// "{stem}_batches" in the input file's directory.
func DeriveOutputDir(inputPath string) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(filepath.Dir(inputPath), stem+"_batches")
}
