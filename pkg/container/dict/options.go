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
	"runtime"

	"github.com/matrixorigin/colcompress/pkg/container/hashtable"
)

const (
	DefaultBatchRows = 65536
)

type Options struct {
	// InitCapacity is the initial bucket count of every hash table.
	InitCapacity int
	// Sorted orders the dictionary by key instead of hash order.
	Sorted bool
	// Workers bounds the goroutines of parallel builds.
	Workers int
	// BatchRows is the number of rows each parallel worker groups.
	BatchRows int
}

type Option func(*Options)

func WithInitCapacity(capacity int) Option {
	return func(o *Options) {
		o.InitCapacity = capacity
	}
}

func WithSorted(sorted bool) Option {
	return func(o *Options) {
		o.Sorted = sorted
	}
}

func WithWorkers(workers int) Option {
	return func(o *Options) {
		o.Workers = workers
	}
}

func WithBatchRows(rows int) Option {
	return func(o *Options) {
		o.BatchRows = rows
	}
}

func newOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.InitCapacity <= 0 {
		o.InitCapacity = hashtable.InitCapacity
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.BatchRows <= 0 {
		o.BatchRows = DefaultBatchRows
	}
	return o
}
