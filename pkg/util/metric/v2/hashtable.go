// Copyright 2023 Matrix Origin
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

package v2

import "github.com/prometheus/client_golang/prometheus"

var (
	hashtableResizeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "hashtable",
			Name:      "resize_total",
			Help:      "Total number of hash table resizes.",
		}, []string{"type"})
	HashtableResizeCounter        = hashtableResizeCounter.WithLabelValues("grow")
	HashtableResizeSkippedCounter = hashtableResizeCounter.WithLabelValues("skipped")

	DictBuildDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mo",
			Subsystem: "dict",
			Name:      "build_duration_seconds",
			Help:      "Bucketed histogram of dictionary build duration.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 20), // 100us to 52s
		}, []string{"type"})
	DictBuildSerialDurationHistogram   = DictBuildDurationHistogram.WithLabelValues("serial")
	DictBuildParallelDurationHistogram = DictBuildDurationHistogram.WithLabelValues("parallel")

	DictBuildRowsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "dict",
			Name:      "build_rows_total",
			Help:      "Total number of rows grouped into dictionaries.",
		})
)

func init() {
	initHashtableMetrics()
}

func initHashtableMetrics() {
	registry.MustRegister(hashtableResizeCounter)
	registry.MustRegister(DictBuildDurationHistogram)
	registry.MustRegister(DictBuildRowsCounter)
}

// RegisterHashMissCountFunc exports the process-wide hash miss counter
// owned by the hashtable package.
func RegisterHashMissCountFunc(f func() uint64) {
	registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "hashtable",
			Name:      "hash_miss_total",
			Help:      "Total number of non-matching key comparisons while probing chains.",
		}, func() float64 {
			return float64(f())
		}))
}
