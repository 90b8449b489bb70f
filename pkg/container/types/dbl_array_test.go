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

package types

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/colcompress/pkg/common/moerr"
)

func TestNewDblArray(t *testing.T) {
	_, err := NewDblArray(nil)
	require.Error(t, err)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))

	_, err = NewDblArray(make([]float64, MaxArrayDimension+1))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))

	empty, err := NewDblArray([]float64{})
	require.NoError(t, err)
	require.Equal(t, 0, empty.Len())

	src := []float64{1, 2, 3}
	a, err := NewDblArray(src)
	require.NoError(t, err)
	src[0] = 100
	require.Equal(t, []float64{1, 2, 3}, a.Data())
	require.Equal(t, 3, a.Len())
	require.Equal(t, "[1, 2, 3]", a.String())
}

func TestDblArrayEqual(t *testing.T) {
	a := MustDblArray(1.0, 1.0)
	b := MustDblArray(1.0, 1.0)
	require.True(t, a.Equal(b))
	require.Equal(t, a.Hash(), b.Hash())

	require.False(t, a.Equal(MustDblArray(1.0, 2.0)))
	require.False(t, a.Equal(MustDblArray(1.0, 1.0, 0.0)))
	require.False(t, MustDblArray(1.0).Equal(MustDblArray()))

	nan1 := MustDblArray(math.NaN(), 1)
	nan2 := MustDblArray(math.Float64frombits(0x7ff8000000000001), 1)
	require.True(t, nan1.Equal(nan2))
	require.Equal(t, nan1.Hash(), nan2.Hash())

	require.False(t, MustDblArray(0.0).Equal(MustDblArray(math.Copysign(0, -1))))
}

func TestDblArrayHashSpread(t *testing.T) {
	seen := make(map[uint32]struct{})
	for i := 0; i < 1000; i++ {
		seen[MustDblArray(float64(i), float64(i)).Hash()] = struct{}{}
	}
	require.Greater(t, len(seen), 990)
}

func TestFieldsToArray(t *testing.T) {
	ctx := context.Background()
	row, err := FieldsToArray(ctx, []string{"1.5", " 2 ", "-3e2"})
	require.NoError(t, err)
	require.Equal(t, []float64{1.5, 2, -300}, row)

	_, err = FieldsToArray(ctx, nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	_, err = FieldsToArray(ctx, []string{"1", "abc"})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrParseError))
}

func TestArraysToString(t *testing.T) {
	require.Equal(t, "[1, 2] [3.5]", ArraysToString([][]float64{{1, 2}, {3.5}}))
}
