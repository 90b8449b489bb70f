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

	"github.com/cespare/xxhash/v2"

	"github.com/matrixorigin/colcompress/pkg/common/moerr"
)

// canonicalNaN is the bit pattern every NaN is folded to, so that all NaNs
// compare equal and hash alike.
const canonicalNaN = 0x7ff8000000000000

// DblArray is an immutable float64 row used as a hash key. Equality is
// element-wise on the float bit patterns (NaN equals NaN, -0 differs from +0),
// and the hash is derived from the same bits.
type DblArray struct {
	data []float64
	hash uint32
}

// NewDblArray copies vals into a new key. A nil vector is rejected, an
// empty one is a valid zero-width key.
func NewDblArray(vals []float64) (DblArray, error) {
	if vals == nil {
		return DblArray{}, moerr.NewInvalidArg(context.TODO(), "dbl array", "nil")
	}
	if len(vals) > MaxArrayDimension {
		return DblArray{}, moerr.NewInvalidArg(context.TODO(), "dbl array width", len(vals))
	}
	data := make([]float64, len(vals))
	copy(data, vals)
	return DblArray{
		data: data,
		hash: hashFloats(data),
	}, nil
}

// MustDblArray is NewDblArray for callers that already validated vals.
func MustDblArray(vals ...float64) DblArray {
	if vals == nil {
		vals = []float64{}
	}
	a, err := NewDblArray(vals)
	if err != nil {
		panic(err)
	}
	return a
}

// Data returns the underlying vector, which must not be modified.
func (a DblArray) Data() []float64 {
	return a.data
}

func (a DblArray) Len() int {
	return len(a.data)
}

func (a DblArray) Hash() uint32 {
	return a.hash
}

func (a DblArray) Equal(o DblArray) bool {
	if len(a.data) != len(o.data) || a.hash != o.hash {
		return false
	}
	for i, v := range a.data {
		if floatBits(v) != floatBits(o.data[i]) {
			return false
		}
	}
	return true
}

func (a DblArray) String() string {
	return ArrayToString(a.data)
}

func floatBits(v float64) uint64 {
	if v != v {
		return canonicalNaN
	}
	return math.Float64bits(v)
}

func hashFloats(data []float64) uint32 {
	bits := make([]uint64, len(data))
	for i, v := range data {
		bits[i] = floatBits(v)
	}
	h := xxhash.Sum64(EncodeSlice(bits))
	return uint32(h ^ (h >> 32))
}
