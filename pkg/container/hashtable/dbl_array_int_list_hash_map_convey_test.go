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
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/matrixorigin/colcompress/pkg/container/types"
)

func TestDblArrayIntListHashMap_Scenario(t *testing.T) {
	convey.Convey("group rows of a two column matrix", t, func() {
		rows := [][]float64{
			{1.0, 1.0},
			{2.0, 2.0},
			{1.0, 1.0},
			{2.0, 2.0},
			{1.0, 1.0},
		}
		ht := NewDblArrayIntListHashMap()
		for i, row := range rows {
			ht.AppendValue(types.MustDblArray(row...), int32(i))
		}

		convey.Convey("every distinct row keeps its positions in order", func() {
			convey.So(ht.Size(), convey.ShouldEqual, 2)
			convey.So(ht.Get(types.MustDblArray(1.0, 1.0)).Extract(), convey.ShouldResemble, []int32{0, 2, 4})
			convey.So(ht.Get(types.MustDblArray(2.0, 2.0)).Extract(), convey.ShouldResemble, []int32{1, 3})
		})

		convey.Convey("an unseen row is absent", func() {
			convey.So(ht.Get(types.MustDblArray(3.0, 3.0)), convey.ShouldBeNil)
		})

		convey.Convey("sorted extraction yields a deterministic dictionary", func() {
			entries := ht.ExtractValues()
			SortEntries(entries)
			convey.So(len(entries), convey.ShouldEqual, 2)
			convey.So(entries[0].Key.Data(), convey.ShouldResemble, []float64{1.0, 1.0})
			convey.So(entries[1].Key.Data(), convey.ShouldResemble, []float64{2.0, 2.0})
		})

		convey.Convey("a bulk list for a new row is visible right away", func() {
			ht.AppendList(types.MustDblArray(9.0), types.NewIntArrayListWithValues(5, 6))
			convey.So(ht.Get(types.MustDblArray(9.0)).Extract(), convey.ShouldResemble, []int32{5, 6})
			convey.So(ht.Size(), convey.ShouldEqual, 3)
		})
	})
}
