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
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/colcompress/pkg/common/moerr"
)

func randomRows(n, width, distinct int) [][]float64 {
	r := rand.New(rand.NewSource(7))
	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, width)
		v := r.Intn(distinct)
		for j := range row {
			row[j] = float64(v*(j+1)) / 4
		}
		rows[i] = row
	}
	return rows
}

func TestBuildParallel(t *testing.T) {
	defer leaktest.AfterTest(t)()
	ctx := context.Background()
	rows := randomRows(10000, 3, 300)

	serial, err := Build(ctx, rows, WithSorted(true))
	require.NoError(t, err)
	parallel, err := BuildParallel(ctx, rows, WithSorted(true), WithWorkers(4), WithBatchRows(777))
	require.NoError(t, err)

	require.Equal(t, serial.Cardinality(), parallel.Cardinality())
	require.Equal(t, serial.Values(), parallel.Values())
	require.Equal(t, serial.Mapping(), parallel.Mapping())
	for i := 0; i < serial.Cardinality(); i++ {
		require.Equal(t, serial.Offsets(i).Extract(), parallel.Offsets(i).Extract())
	}
}

func TestBuildParallel_PresizedMerge(t *testing.T) {
	defer leaktest.AfterTest(t)()
	rows := randomRows(5000, 2, 1000)
	serial, err := Build(context.Background(), rows)
	require.NoError(t, err)
	d, err := BuildParallel(context.Background(), rows, WithWorkers(3), WithBatchRows(500))
	require.NoError(t, err)
	require.Equal(t, serial.Cardinality(), d.Cardinality())
	require.Greater(t, d.idx.ht.Capacity(), serial.Cardinality())
}

func TestCapacityFor(t *testing.T) {
	require.Equal(t, 1, capacityFor(0, 10))
	require.Equal(t, 134, capacityFor(100, 1000))
	// an estimate above the row count is capped
	require.Equal(t, 14, capacityFor(100, 10))
}

func TestReverseIndexSketch(t *testing.T) {
	idx := newReverseIndex(0)
	require.NoError(t, idx.insert(context.Background(), matrixSource(randomRows(2000, 2, 100)), 0, 2000))
	est := idx.sketch().Estimate()
	require.InDelta(t, float64(idx.ht.Size()), float64(est), 5)
}

func TestBuildParallel_SmallInputIsSerial(t *testing.T) {
	defer leaktest.AfterTest(t)()
	d, err := BuildParallel(context.Background(), [][]float64{{1}, {1}, {2}}, WithWorkers(4))
	require.NoError(t, err)
	require.Equal(t, 2, d.Cardinality())
}

func TestBuildParallel_Errors(t *testing.T) {
	defer leaktest.AfterTest(t)()
	rows := randomRows(100, 2, 10)
	rows[50] = []float64{1}
	_, err := BuildParallel(context.Background(), rows, WithWorkers(2), WithBatchRows(10))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrSizeNotMatch))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = BuildParallel(ctx, randomRows(100, 2, 10), WithWorkers(2), WithBatchRows(10))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrQueryInterrupted))
}

func TestBuildColumnGroups(t *testing.T) {
	defer leaktest.AfterTest(t)()
	ctx := context.Background()
	matrix := [][]float64{
		{1, 10, 100},
		{1, 20, 100},
		{2, 10, 100},
		{1, 10, 100},
	}
	dicts, err := BuildColumnGroups(ctx, matrix, [][]int{{0}, {1, 2}, {0, 1, 2}}, WithSorted(true), WithWorkers(2))
	require.NoError(t, err)
	require.Equal(t, 3, len(dicts))

	require.Equal(t, [][]float64{{1}, {2}}, dicts[0].Values())
	require.Equal(t, []int32{0, 0, 1, 0}, dicts[0].Mapping())

	require.Equal(t, 2, dicts[1].Width())
	require.Equal(t, [][]float64{{10, 100}, {20, 100}}, dicts[1].Values())
	require.Equal(t, []int32{0, 2, 3}, dicts[1].Offsets(0).Extract())

	require.Equal(t, 3, dicts[2].Cardinality())
	require.Equal(t, []int32{0, 3}, dicts[2].Offsets(0).Extract())
}

func TestBuildColumnGroups_BadGroups(t *testing.T) {
	ctx := context.Background()
	matrix := [][]float64{{1, 2}}
	_, err := BuildColumnGroups(ctx, matrix, [][]int{{0}, {2}})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrOutOfRange))

	_, err = BuildColumnGroups(ctx, matrix, [][]int{{}})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))
}

func TestBuildColumnGroups_EmptyMatrix(t *testing.T) {
	defer leaktest.AfterTest(t)()
	ctx := context.Background()
	dicts, err := BuildColumnGroups(ctx, nil, [][]int{{0}, {1, 2}}, WithWorkers(2))
	require.NoError(t, err)
	require.Equal(t, 2, len(dicts))
	for i, d := range dicts {
		require.Equal(t, 0, d.Cardinality())
		require.Equal(t, 0, d.Rows())
		require.Empty(t, d.Mapping())
		require.Equal(t, i+1, d.Width())
	}

	_, err = BuildColumnGroups(ctx, nil, [][]int{{}})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))
}

func TestRunTasks(t *testing.T) {
	defer leaktest.AfterTest(t)()
	ctx := context.Background()

	var ran atomic.Int32
	require.NoError(t, runTasks(ctx, 3, 10, func(i int) error {
		ran.Add(1)
		return nil
	}))
	require.Equal(t, int32(10), ran.Load())

	err := runTasks(ctx, 2, 4, func(i int) error {
		if i == 2 {
			panic("bad batch")
		}
		return nil
	})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInternal))
	require.Contains(t, err.Error(), "bad batch")

	err = runTasks(ctx, 2, 4, func(i int) error {
		if i == 1 {
			return moerr.NewInvalidInput(ctx, "batch %d", i)
		}
		return nil
	})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	require.NoError(t, runTasks(ctx, 2, 0, nil))
}
