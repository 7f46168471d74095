// Package series implements the Series Builder: it scans a directory,
// parses each file's metadata, groups datasets by SeriesInstanceUID, sorts
// and splits them on position discontinuities, and exposes each group as a
// lazily-materializable volume.
package series

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/odincare/dcmseries/dicom"
	"github.com/odincare/dcmseries/dicomlog"
	"github.com/odincare/dcmseries/progress"
)

// Series is an ordered group of slices sharing a SeriesInstanceUID.
type Series struct {
	SeriesInstanceUID string
	Slices            []*dicom.Dataset
	Shape             []int
	Sampling          []float64
}

// ScanOptions configures the directory scan. The zero value is valid: it
// scans with GOMAXPROCS workers and a no-op progress sink.
type ScanOptions struct {
	// Workers is the number of concurrent metadata-parse goroutines.
	// Defaults to runtime.GOMAXPROCS(0).
	Workers int

	// Progress receives scan and split warnings. Defaults to progress.Noop.
	Progress progress.Sink

	// Context allows cancelling an in-progress scan.
	Context context.Context
}

func (o ScanOptions) withDefaults() ScanOptions {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Progress == nil {
		o.Progress = progress.Noop
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	return o
}

type fileResult struct {
	index int
	path  string
	ds    *dicom.Dataset
	err   error
}

type fileJob struct {
	index int
	path  string
}

// ScanDirectory implements the full Series Builder pipeline: directory
// scan, grouping, intra-series sort, volume-boundary split, and finalize.
func ScanDirectory(path string, opts ScanOptions) ([]*Series, error) {
	opts = opts.withDefaults()

	files, err := discoverFiles(path)
	if err != nil {
		return nil, err
	}

	results := parseFilesConcurrently(files, opts)

	grouped := make(map[string][]*dicom.Dataset)
	for _, r := range results {
		if r.err != nil {
			if errors.Is(r.err, dicom.ErrNotADicomFile) {
				continue
			}
			opts.Progress.Write(fmt.Sprintf("series: skipping %s: %v", r.path, r.err))
			continue
		}
		uid, ok := r.ds.SeriesInstanceUID()
		if !ok {
			continue
		}
		grouped[uid] = append(grouped[uid], r.ds)
	}

	uids := make([]string, 0, len(grouped))
	for uid := range grouped {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	var out []*Series
	for _, uid := range uids {
		slices := grouped[uid]
		sortByInstanceNumber(slices)
		for _, bucket := range splitVolumeBoundaries(slices, opts.Progress) {
			s, err := finalize(uid, bucket, opts.Progress)
			if err != nil {
				continue
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// discoverFiles takes path's directory (its parent if path is a file),
// walks it recursively, and returns every regular file whose name doesn't
// contain "DICOMDIR".
func discoverFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("series: stat %s: %w", path, err)
	}
	root := path
	if !info.IsDir() {
		root = filepath.Dir(path)
	}

	var files []string
	err = filepath.Walk(root, func(p string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if fi.IsDir() {
			return nil
		}
		if strings.Contains(fi.Name(), "DICOMDIR") {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("series: walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// parseFilesConcurrently parses files in parallel but returns results
// indexed by files' original (sorted) discovery order, not goroutine
// completion order: callers that break ties on that order (sortByInstanceNumber)
// depend on it being stable and reproducible across runs.
func parseFilesConcurrently(files []string, opts ScanOptions) []fileResult {
	jobs := make(chan fileJob, len(files))
	resultsCh := make(chan fileResult, len(files))

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-opts.Context.Done():
					resultsCh <- fileResult{index: job.index, path: job.path, err: opts.Context.Err()}
					continue
				default:
				}
				dicomlog.Vprintf(1, "series: parsing %s", job.path)
				ds, err := dicom.Open(job.path)
				if err != nil {
					dicomlog.Vprintf(1, "series: %s: %v", job.path, err)
				}
				resultsCh <- fileResult{index: job.index, path: job.path, ds: ds, err: err}
			}
		}()
	}

	for i, f := range files {
		jobs <- fileJob{index: i, path: f}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	results := make([]fileResult, len(files))
	for r := range resultsCh {
		results[r.index] = r
	}
	return results
}

func sortByInstanceNumber(slices []*dicom.Dataset) {
	sort.SliceStable(slices, func(i, j int) bool {
		a, _ := slices[i].InstanceNumber()
		b, _ := slices[j].InstanceNumber()
		return a < b
	})
}
