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
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
)

const intArrayListInitCapacity = 4

// IntArrayList is an append-only list of row positions. Its backing array
// grows by doubling and never shrinks.
type IntArrayList struct {
	data []int32
}

func NewIntArrayList() *IntArrayList {
	return &IntArrayList{}
}

func NewIntArrayListWithValues(vals ...int32) *IntArrayList {
	l := &IntArrayList{data: make([]int32, len(vals))}
	copy(l.data, vals)
	return l
}

func (l *IntArrayList) AppendValue(v int32) {
	if len(l.data) == cap(l.data) {
		newCap := cap(l.data) * 2
		if newCap < intArrayListInitCapacity {
			newCap = intArrayListInitCapacity
		}
		data := make([]int32, len(l.data), newCap)
		copy(data, l.data)
		l.data = data
	}
	l.data = append(l.data, v)
}

// AppendList appends every position of o, in order.
func (l *IntArrayList) AppendList(o *IntArrayList) {
	for _, v := range o.data {
		l.AppendValue(v)
	}
}

func (l *IntArrayList) Size() int {
	return len(l.data)
}

func (l *IntArrayList) Get(i int) int32 {
	return l.data[i]
}

// Extract returns the positions without copying.
func (l *IntArrayList) Extract() []int32 {
	return l.data
}

// ToBitmap returns the positions as a roaring bitmap. Positions are row
// indexes and therefore never negative.
func (l *IntArrayList) ToBitmap() *roaring.Bitmap {
	bm := roaring.New()
	for _, v := range l.data {
		bm.Add(uint32(v))
	}
	return bm
}

func (l *IntArrayList) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range l.data {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(int(v)))
	}
	sb.WriteByte(']')
	return sb.String()
}
