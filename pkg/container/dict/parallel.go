// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dict

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/axiomhq/hyperloglog"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/matrixorigin/colcompress/pkg/common/moerr"
	"github.com/matrixorigin/colcompress/pkg/container/hashtable"
	"github.com/matrixorigin/colcompress/pkg/logutil"
	v2 "github.com/matrixorigin/colcompress/pkg/util/metric/v2"
)

// BuildParallel builds the same dictionary as Build. Rows are split into
// contiguous batches of Options.BatchRows, every batch is grouped into its
// own hash table on a worker pool, and the tables are merged in batch order
// so each position list stays ascending. The merge target is sized from a
// hyperloglog estimate of the distinct rows over all batches.
func BuildParallel(ctx context.Context, rows [][]float64, opts ...Option) (*Dictionary, error) {
	o := newOptions(opts...)
	if o.Workers <= 1 || len(rows) <= o.BatchRows {
		return Build(ctx, rows, opts...)
	}
	width, err := checkRows(ctx, rows)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	batches := (len(rows) + o.BatchRows - 1) / o.BatchRows
	idxes := make([]*reverseIndex, batches)
	sketches := make([]*hyperloglog.Sketch, batches)
	src := matrixSource(rows)

	err = runTasks(ctx, o.Workers, batches, func(b int) error {
		begin := b * o.BatchRows
		end := begin + o.BatchRows
		if end > len(rows) {
			end = len(rows)
		}
		idx := newReverseIndex(o.InitCapacity)
		if err := idx.insert(ctx, src, begin, end); err != nil {
			return err
		}
		idxes[b] = idx
		sketches[b] = idx.sketch()
		return nil
	})
	if err != nil {
		return nil, err
	}

	estimate := sketches[0]
	for _, sk := range sketches[1:] {
		if err := estimate.Merge(sk); err != nil {
			return nil, moerr.ConvertGoError(ctx, err)
		}
	}
	final := newReverseIndex(capacityFor(estimate.Estimate(), len(rows)))
	for _, idx := range idxes {
		final.merge(idx)
	}
	d := newDictionary(final, width, len(rows), o.Sorted)

	v2.DictBuildParallelDurationHistogram.Observe(time.Since(start).Seconds())
	v2.DictBuildRowsCounter.Add(float64(len(rows)))
	logutil.Debug("dictionary built in parallel",
		zap.Int("rows", len(rows)),
		zap.Int("batches", batches),
		zap.Int("workers", o.Workers),
		zap.Int("cardinality", d.Cardinality()),
		zap.Uint64("estimate", estimate.Estimate()),
		zap.Duration("duration", time.Since(start)))
	return d, nil
}

// capacityFor returns a bucket count that holds estimate keys without
// resizing. estimate is capped by the row count.
func capacityFor(estimate uint64, rows int) int {
	n := int(min(estimate, uint64(rows)))
	return int(float64(n)/hashtable.LoadFactor) + 1
}

// BuildColumnGroups builds one dictionary per column group of matrix. Each
// group lists column indexes of matrix; groups are built concurrently, each
// with its own hash table. An empty matrix yields an empty dictionary per
// group, as Build does for empty rows.
func BuildColumnGroups(ctx context.Context, matrix [][]float64, groups [][]int, opts ...Option) ([]*Dictionary, error) {
	o := newOptions(opts...)
	width, err := checkRows(ctx, matrix)
	if err != nil {
		return nil, err
	}
	for g, cols := range groups {
		if len(cols) == 0 {
			return nil, moerr.NewInvalidArg(ctx, fmt.Sprintf("column group %d", g), "empty")
		}
		for _, c := range cols {
			// an empty matrix has no width to check against
			if len(matrix) > 0 && (c < 0 || c >= width) {
				return nil, moerr.NewOutOfRange(ctx, "column", "group %d column %d, matrix width %d", g, c, width)
			}
		}
	}

	start := time.Now()
	dicts := make([]*Dictionary, len(groups))
	err = runTasks(ctx, o.Workers, len(groups), func(g int) error {
		cols := groups[g]
		buf := make([]float64, len(cols))
		src := func(i int) []float64 {
			for j, c := range cols {
				buf[j] = matrix[i][c]
			}
			return buf
		}
		idx := newReverseIndex(o.InitCapacity)
		if err := idx.insert(ctx, src, 0, len(matrix)); err != nil {
			return err
		}
		dicts[g] = newDictionary(idx, len(cols), len(matrix), o.Sorted)
		return nil
	})
	if err != nil {
		return nil, err
	}

	v2.DictBuildParallelDurationHistogram.Observe(time.Since(start).Seconds())
	v2.DictBuildRowsCounter.Add(float64(len(matrix) * len(groups)))
	logutil.Debug("column group dictionaries built",
		zap.Int("rows", len(matrix)),
		zap.Int("groups", len(groups)),
		zap.Duration("duration", time.Since(start)))
	return dicts, nil
}

// runTasks runs fn(0..n-1) on a pool of at most workers goroutines and
// returns the combined errors. A panicking task is reported as an error.
func runTasks(ctx context.Context, workers, n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return moerr.ConvertGoError(ctx, err)
	}
	defer func() {
		_ = pool.ReleaseTimeout(time.Second)
	}()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	record := func(err error) {
		mu.Lock()
		errs = multierr.Append(errs, err)
		mu.Unlock()
	}

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			record(moerr.NewQueryInterrupted(ctx))
			break
		}
		i := i // per-iteration copy; go directive is below 1.22
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					record(moerr.ConvertPanicError(ctx, r))
				}
			}()
			if err := fn(i); err != nil {
				record(err)
			}
		}); err != nil {
			wg.Done()
			record(moerr.ConvertGoError(ctx, err))
			break
		}
	}
	wg.Wait()
	return errs
}
