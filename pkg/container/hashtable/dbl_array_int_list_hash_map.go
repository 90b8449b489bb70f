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

package hashtable

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/matrixorigin/colcompress/pkg/container/types"
	"github.com/matrixorigin/colcompress/pkg/logutil"
	v2 "github.com/matrixorigin/colcompress/pkg/util/metric/v2"
)

// DblArrayIntListEntry is one node of a bucket chain.
type DblArrayIntListEntry struct {
	Key   types.DblArray
	Value *types.IntArrayList
	next  *DblArrayIntListEntry
}

func (e *DblArrayIntListEntry) String() string {
	if e.next == nil {
		return e.Key.String() + ":" + e.Value.String()
	}
	return e.Key.String() + ":" + e.Value.String() + "," + e.next.String()
}

// CompareEntries orders entries lexicographically by key vector. When one
// key is a prefix of the other the longer key is greater. NaN sorts before
// every number and -0 before +0, so only equal keys compare 0.
func CompareEntries(a, b *DblArrayIntListEntry) int {
	ad, bd := a.Key.Data(), b.Key.Data()
	for i := 0; i < len(ad) && i < len(bd); i++ {
		if c := compareFloat(ad[i], bd[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(ad), len(bd))
}

func compareFloat(x, y float64) int {
	if c := cmp.Compare(x, y); c != 0 || x != 0 {
		return c
	}
	// x and y are zeros
	switch xs, ys := math.Signbit(x), math.Signbit(y); {
	case xs == ys:
		return 0
	case xs:
		return -1
	default:
		return 1
	}
}

// SortEntries sorts entries in place by CompareEntries.
func SortEntries(entries []*DblArrayIntListEntry) {
	slices.SortFunc(entries, CompareEntries)
}

// DblArrayIntListHashMap groups float64 rows by value and keeps, per
// distinct row, the list of positions it was seen at. Buckets are chains
// with head insertion; the bucket count is always a power of two.
//
// A map is not safe for concurrent use.
type DblArrayIntListHashMap struct {
	data []*DblArrayIntListEntry
	size int
}

func NewDblArrayIntListHashMap() *DblArrayIntListHashMap {
	return NewDblArrayIntListHashMapWithCapacity(InitCapacity)
}

// NewDblArrayIntListHashMapWithCapacity rounds capacity up to a power of two.
func NewDblArrayIntListHashMapWithCapacity(capacity int) *DblArrayIntListHashMap {
	return &DblArrayIntListHashMap{
		data: make([]*DblArrayIntListEntry, tableSizeFor(capacity)),
	}
}

// Size returns the number of distinct keys.
func (ht *DblArrayIntListHashMap) Size() int {
	return ht.size
}

// Capacity returns the number of buckets.
func (ht *DblArrayIntListHashMap) Capacity() int {
	return len(ht.data)
}

// Get returns the positions of key, or nil if key was never inserted.
func (ht *DblArrayIntListHashMap) Get(key types.DblArray) *types.IntArrayList {
	if ht.size == 0 {
		return nil
	}
	ix := indexFor(spreadHash(key.Hash()), len(ht.data))
	for e := ht.data[ix]; e != nil; e = e.next {
		if e.Key.Equal(key) {
			return e.Value
		}
		hashMissCount.Add(1)
	}
	return nil
}

// AppendList attaches a complete position list to key. If key is already
// present its previous list is replaced, so the last call for a key wins.
func (ht *DblArrayIntListHashMap) AppendList(key types.DblArray, value *types.IntArrayList) {
	ix := indexFor(spreadHash(key.Hash()), len(ht.data))

	var prev *DblArrayIntListEntry
	for e := ht.data[ix]; e != nil; prev, e = e, e.next {
		if e.Key.Equal(key) {
			if prev == nil {
				ht.data[ix] = e.next
			} else {
				prev.next = e.next
			}
			ht.size--
			break
		}
	}

	ht.insertEntry(ix, &DblArrayIntListEntry{Key: key, Value: value})
	if ht.overloaded() {
		ht.resize()
	}
}

// AppendValue appends one position to the list of key, creating the list
// the first time key is seen.
func (ht *DblArrayIntListHashMap) AppendValue(key types.DblArray, value int32) {
	ix := indexFor(spreadHash(key.Hash()), len(ht.data))

	var lst *types.IntArrayList
	for e := ht.data[ix]; e != nil; e = e.next {
		if e.Key.Equal(key) {
			lst = e.Value
			break
		}
		hashMissCount.Add(1)
	}
	if lst == nil {
		lst = types.NewIntArrayList()
		ht.insertEntry(ix, &DblArrayIntListEntry{Key: key, Value: lst})
	}
	lst.AppendValue(value)

	if ht.overloaded() {
		ht.resize()
	}
}

// ExtractValues returns all entries in bucket order, each chain head first.
// The result is not sorted; see SortEntries.
func (ht *DblArrayIntListHashMap) ExtractValues() []*DblArrayIntListEntry {
	ret := make([]*DblArrayIntListEntry, 0, ht.size)
	for _, e := range ht.data {
		for ; e != nil; e = e.next {
			ret = append(ret, e)
		}
	}
	return ret
}

func (ht *DblArrayIntListHashMap) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DblArrayIntListHashMap   %d", ht.size)
	for i, e := range ht.data {
		if e != nil {
			fmt.Fprintf(&sb, "\nid:%d[%s]", i, e)
		}
	}
	return sb.String()
}

func (ht *DblArrayIntListHashMap) insertEntry(ix int, e *DblArrayIntListEntry) {
	e.next = ht.data[ix]
	ht.data[ix] = e
	ht.size++
}

func (ht *DblArrayIntListHashMap) overloaded() bool {
	return float64(ht.size) >= LoadFactor*float64(len(ht.data))
}

// resize grows the bucket array by ResizeFactor and relinks every entry
// under its new index. Key and list move as a unit. Growth that would pass
// maxCapacity is skipped and the map keeps working overloaded.
func (ht *DblArrayIntListHashMap) resize() {
	if len(ht.data) > maxCapacity/ResizeFactor {
		v2.HashtableResizeSkippedCounter.Inc()
		logutil.Debug("hashtable resize skipped",
			zap.Int("capacity", len(ht.data)),
			zap.Int("size", ht.size))
		return
	}

	oldData := ht.data
	ht.data = make([]*DblArrayIntListEntry, len(oldData)*ResizeFactor)
	ht.size = 0

	for _, e := range oldData {
		for e != nil {
			next := e.next
			ht.insertEntry(indexFor(spreadHash(e.Key.Hash()), len(ht.data)), e)
			e = next
		}
	}

	v2.HashtableResizeCounter.Inc()
	logutil.Debug("hashtable resized",
		zap.Int("capacity", len(ht.data)),
		zap.Int("size", ht.size))
}
