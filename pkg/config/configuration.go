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

package config

import (
	"context"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/matrixorigin/colcompress/pkg/common/moerr"
	"github.com/matrixorigin/colcompress/pkg/container/dict"
	"github.com/matrixorigin/colcompress/pkg/container/hashtable"
	"github.com/matrixorigin/colcompress/pkg/logutil"
)

// Config is the toml configuration of the dictionary tools.
type Config struct {
	Log    logutil.LogConfig `toml:"log"`
	Dict   DictConfig        `toml:"dict"`
	Metric MetricConfig      `toml:"metric"`
}

// DictConfig tunes dictionary building.
type DictConfig struct {
	// InitCapacity is the initial bucket count of the hash tables, rounded up
	// to a power of two. default: 8
	InitCapacity int `toml:"init-capacity"`

	// Workers bounds the goroutines of a parallel build. default: GOMAXPROCS
	Workers int `toml:"workers"`

	// BatchRows is the number of rows grouped by one worker. default: 65536
	BatchRows int `toml:"batch-rows"`

	// Sorted orders dictionary entries by value. default: false
	Sorted bool `toml:"sorted"`
}

// MetricConfig controls metric output.
type MetricConfig struct {
	// Dump writes the metric registry in text format when a command ends.
	Dump bool `toml:"dump"`
}

// NewConfig returns the configuration used when no file is given.
func NewConfig() *Config {
	cfg := &Config{
		Log: logutil.LogConfig{
			Level:  zapcore.InfoLevel.String(),
			Format: "console",
		},
	}
	if err := cfg.Validate(context.Background()); err != nil {
		panic(err)
	}
	return cfg
}

// ParseConfigFromFile decodes and validates a toml file.
func ParseConfigFromFile(ctx context.Context, file string) (*Config, error) {
	if _, err := os.Stat(file); err != nil {
		if os.IsNotExist(err) {
			return nil, moerr.NewFileNotFound(ctx, file)
		}
		return nil, moerr.ConvertGoError(ctx, err)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(file, cfg); err != nil {
		return nil, moerr.NewBadConfig(ctx, "decode %s: %v", file, err)
	}
	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects negative tuning values and fills defaults.
func (c *Config) Validate(ctx context.Context) error {
	if c.Dict.InitCapacity < 0 {
		return moerr.NewBadConfig(ctx, "dict.init-capacity %d", c.Dict.InitCapacity)
	}
	if c.Dict.Workers < 0 {
		return moerr.NewBadConfig(ctx, "dict.workers %d", c.Dict.Workers)
	}
	if c.Dict.BatchRows < 0 {
		return moerr.NewBadConfig(ctx, "dict.batch-rows %d", c.Dict.BatchRows)
	}
	if c.Dict.InitCapacity == 0 {
		c.Dict.InitCapacity = hashtable.InitCapacity
	}
	if c.Dict.BatchRows == 0 {
		c.Dict.BatchRows = dict.DefaultBatchRows
	}
	if c.Log.Level == "" {
		c.Log.Level = zapcore.InfoLevel.String()
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return moerr.NewBadConfig(ctx, "log.format %s", c.Log.Format)
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return moerr.NewBadConfig(ctx, "log.level %s", c.Log.Level)
	}
	return nil
}

// DictOptions converts the dict section into build options.
func (c *Config) DictOptions() []dict.Option {
	return []dict.Option{
		dict.WithInitCapacity(c.Dict.InitCapacity),
		dict.WithWorkers(c.Dict.Workers),
		dict.WithBatchRows(c.Dict.BatchRows),
		dict.WithSorted(c.Dict.Sorted),
	}
}
