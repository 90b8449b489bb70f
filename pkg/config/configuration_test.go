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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/colcompress/pkg/common/moerr"
	"github.com/matrixorigin/colcompress/pkg/container/dict"
)

func writeConfig(t *testing.T, content string) string {
	file := filepath.Join(t.TempDir(), "dict.toml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestParseConfigFromFile(t *testing.T) {
	ctx := context.Background()
	file := writeConfig(t, `
[log]
level = "debug"
format = "json"

[dict]
init-capacity = 64
workers = 4
sorted = true

[metric]
dump = true
`)
	cfg, err := ParseConfigFromFile(ctx, file)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, 64, cfg.Dict.InitCapacity)
	require.Equal(t, 4, cfg.Dict.Workers)
	require.Equal(t, dict.DefaultBatchRows, cfg.Dict.BatchRows)
	require.True(t, cfg.Dict.Sorted)
	require.True(t, cfg.Metric.Dump)
	require.Equal(t, 4, len(cfg.DictOptions()))
}

func TestParseConfigFromFile_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := ParseConfigFromFile(ctx, filepath.Join(t.TempDir(), "missing.toml"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrFileNotFound))

	_, err = ParseConfigFromFile(ctx, writeConfig(t, "[dict\nworkers = 1"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))

	_, err = ParseConfigFromFile(ctx, writeConfig(t, "[dict]\nworkers = -1\n"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))

	_, err = ParseConfigFromFile(ctx, writeConfig(t, "[log]\nformat = \"xml\"\n"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))

	_, err = ParseConfigFromFile(ctx, writeConfig(t, "[log]\nlevel = \"loud\"\n"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "console", cfg.Log.Format)
	require.Equal(t, 8, cfg.Dict.InitCapacity)
	require.Equal(t, dict.DefaultBatchRows, cfg.Dict.BatchRows)
	require.False(t, cfg.Metric.Dump)
}
