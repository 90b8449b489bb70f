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
	"math"
	"time"

	"github.com/RoaringBitmap/roaring"
	"go.uber.org/zap"

	"github.com/matrixorigin/colcompress/pkg/common/moerr"
	"github.com/matrixorigin/colcompress/pkg/container/hashtable"
	"github.com/matrixorigin/colcompress/pkg/container/types"
	"github.com/matrixorigin/colcompress/pkg/logutil"
	v2 "github.com/matrixorigin/colcompress/pkg/util/metric/v2"
)

// Dictionary is the distinct rows of a matrix together with the positions
// each of them occurs at. Entry i of the dictionary is addressed by the
// values of Mapping.
type Dictionary struct {
	width   int
	rows    int
	idx     *reverseIndex
	entries []*hashtable.DblArrayIntListEntry
	mapping []int32
}

// Build groups rows by value. All rows must have the same width.
func Build(ctx context.Context, rows [][]float64, opts ...Option) (*Dictionary, error) {
	o := newOptions(opts...)
	width, err := checkRows(ctx, rows)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	idx := newReverseIndex(o.InitCapacity)
	if err := idx.insert(ctx, matrixSource(rows), 0, len(rows)); err != nil {
		return nil, err
	}
	d := newDictionary(idx, width, len(rows), o.Sorted)

	v2.DictBuildSerialDurationHistogram.Observe(time.Since(start).Seconds())
	v2.DictBuildRowsCounter.Add(float64(len(rows)))
	logutil.Debug("dictionary built",
		zap.Int("rows", len(rows)),
		zap.Int("width", width),
		zap.Int("cardinality", d.Cardinality()),
		zap.Duration("duration", time.Since(start)))
	return d, nil
}

func newDictionary(idx *reverseIndex, width, rows int, sorted bool) *Dictionary {
	d := &Dictionary{
		width:   width,
		rows:    rows,
		idx:     idx,
		entries: idx.entries(sorted),
		mapping: make([]int32, rows),
	}
	for i, e := range d.entries {
		for _, pos := range e.Value.Extract() {
			d.mapping[pos] = int32(i)
		}
	}
	return d
}

// Cardinality returns the number of distinct rows.
func (d *Dictionary) Cardinality() int {
	return len(d.entries)
}

// Width returns the number of columns of every row.
func (d *Dictionary) Width() int {
	return d.width
}

// Rows returns the number of rows the dictionary was built from.
func (d *Dictionary) Rows() int {
	return d.rows
}

// Value returns dictionary entry i. The slice must not be modified.
func (d *Dictionary) Value(i int) []float64 {
	return d.entries[i].Key.Data()
}

// Values returns all dictionary entries in dictionary order.
func (d *Dictionary) Values() [][]float64 {
	vals := make([][]float64, len(d.entries))
	for i, e := range d.entries {
		vals[i] = e.Key.Data()
	}
	return vals
}

// Offsets returns the ascending row positions of entry i.
func (d *Dictionary) Offsets(i int) *types.IntArrayList {
	return d.entries[i].Value
}

func (d *Dictionary) Bitmap(i int) *roaring.Bitmap {
	return d.entries[i].Value.ToBitmap()
}

// Mapping returns, for every row, the index of its dictionary entry.
func (d *Dictionary) Mapping() []int32 {
	return d.mapping
}

// Find returns the index of the entry equal to row, or -1.
func (d *Dictionary) Find(row []float64) int {
	key, err := types.NewDblArray(row)
	if err != nil {
		return -1
	}
	lst := d.idx.ht.Get(key)
	if lst == nil || lst.Size() == 0 {
		return -1
	}
	return int(d.mapping[lst.Get(0)])
}

func (d *Dictionary) String() string {
	return fmt.Sprintf("dictionary(rows=%d, width=%d, cardinality=%d)", d.rows, d.width, len(d.entries))
}

func matrixSource(rows [][]float64) rowSource {
	return func(i int) []float64 {
		return rows[i]
	}
}

// checkRows returns the common width of rows.
func checkRows(ctx context.Context, rows [][]float64) (int, error) {
	if len(rows) > math.MaxInt32 {
		return 0, moerr.NewOutOfRange(ctx, "int32", "row count %d", len(rows))
	}
	if len(rows) == 0 {
		return 0, nil
	}
	width := len(rows[0])
	for i, row := range rows {
		if row == nil {
			return 0, moerr.NewInvalidArg(ctx, fmt.Sprintf("row %d", i), "nil")
		}
		if len(row) != width {
			return 0, moerr.NewSizeNotMatch(ctx, fmt.Sprintf("row %d", i))
		}
	}
	if width > types.MaxArrayDimension {
		return 0, moerr.NewInvalidInput(ctx, "row width %d is over the maximum dimensions: %v", width, types.MaxArrayDimension)
	}
	return width, nil
}
