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

	"github.com/axiomhq/hyperloglog"

	"github.com/matrixorigin/colcompress/pkg/common/moerr"
	"github.com/matrixorigin/colcompress/pkg/container/hashtable"
	"github.com/matrixorigin/colcompress/pkg/container/types"
)

// checkInterval is how many rows are inserted between two context checks.
const checkInterval = 8192

// rowSource yields row i of a matrix view. The returned slice may be reused
// by the next call.
type rowSource func(i int) []float64

// reverseIndex maps every distinct row to the positions it occurs at.
type reverseIndex struct {
	ht *hashtable.DblArrayIntListHashMap
}

func newReverseIndex(capacity int) *reverseIndex {
	return &reverseIndex{
		ht: hashtable.NewDblArrayIntListHashMapWithCapacity(capacity),
	}
}

// insert adds rows [start, end) of src, recording each under its own
// position.
func (idx *reverseIndex) insert(ctx context.Context, src rowSource, start, end int) error {
	for i := start; i < end; i++ {
		if (i-start)%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return moerr.NewQueryInterrupted(ctx)
			}
		}
		key, err := types.NewDblArray(src(i))
		if err != nil {
			return err
		}
		idx.ht.AppendValue(key, int32(i))
	}
	return nil
}

// merge moves every position list of o into idx. o must only hold positions
// greater than those already in idx, so each list stays ascending.
func (idx *reverseIndex) merge(o *reverseIndex) {
	for _, e := range o.ht.ExtractValues() {
		if lst := idx.ht.Get(e.Key); lst != nil {
			lst.AppendList(e.Value)
		} else {
			idx.ht.AppendList(e.Key, e.Value)
		}
	}
}

// sketch returns a cardinality sketch of the distinct rows of idx.
func (idx *reverseIndex) sketch() *hyperloglog.Sketch {
	sk := hyperloglog.New14()
	for _, e := range idx.ht.ExtractValues() {
		sk.Insert(types.EncodeSlice(e.Key.Data()))
	}
	return sk
}

func (idx *reverseIndex) entries(sorted bool) []*hashtable.DblArrayIntListEntry {
	entries := idx.ht.ExtractValues()
	if sorted {
		hashtable.SortEntries(entries)
	}
	return entries
}
