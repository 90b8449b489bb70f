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
	"math"
	"sync/atomic"

	v2 "github.com/matrixorigin/colcompress/pkg/util/metric/v2"
)

// Tuning shared by the chained maps of this package.
const (
	InitCapacity = 8
	ResizeFactor = 2
	LoadFactor   = 0.75
	// MaxCapacity bounds the bucket count; growing past it is skipped.
	MaxCapacity = math.MaxInt32
)

// maxCapacity is MaxCapacity, kept as a var so tests can lower the ceiling.
var maxCapacity = MaxCapacity

// hashMissCount counts key comparisons that did not match while walking a
// chain, across all maps in the process. It is a diagnostic only.
var hashMissCount atomic.Uint64

func init() {
	v2.RegisterHashMissCountFunc(HashMissCount)
}

// HashMissCount returns the process-wide number of failed chain comparisons.
func HashMissCount() uint64 {
	return hashMissCount.Load()
}

// ResetHashMissCount zeroes the miss counter, for test isolation.
func ResetHashMissCount() {
	hashMissCount.Store(0)
}

// spreadHash folds the high bits of h into the low bits, which are the only
// ones a power-of-two mask looks at.
func spreadHash(h uint32) uint32 {
	h ^= (h >> 20) ^ (h >> 12)
	return h ^ (h >> 7) ^ (h >> 4)
}

// indexFor requires length to be a power of two.
func indexFor(h uint32, length int) int {
	return int(h & uint32(length-1))
}

// tableSizeFor rounds capacity up to a power of two within [1, maxCapacity].
func tableSizeFor(capacity int) int {
	if capacity <= 0 {
		return InitCapacity
	}
	n := 1
	for n < capacity && n <= maxCapacity/2 {
		n <<= 1
	}
	return n
}
