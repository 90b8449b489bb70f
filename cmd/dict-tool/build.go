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

package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matrixorigin/colcompress/pkg/common/moerr"
	"github.com/matrixorigin/colcompress/pkg/config"
	"github.com/matrixorigin/colcompress/pkg/container/dict"
	"github.com/matrixorigin/colcompress/pkg/container/hashtable"
	"github.com/matrixorigin/colcompress/pkg/container/types"
	"github.com/matrixorigin/colcompress/pkg/logutil"
	v2 "github.com/matrixorigin/colcompress/pkg/util/metric/v2"
)

// maxPrintValues bounds the per-value lines printed for one dictionary.
const maxPrintValues = 32

type buildArgs struct {
	cfgFile string
	workers int
	sorted  bool
	columns []string
}

func buildCommand() *cobra.Command {
	args := &buildArgs{}
	cmd := &cobra.Command{
		Use:   "build <csv-file>",
		Short: "Build dictionaries from a numeric csv matrix",
		Long: "Read a csv file of numbers, group equal rows (or equal column groups " +
			"given with --columns) and print the distinct values with their row counts",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runBuild(ctx, cmd, args, files[0])
		},
	}
	cmd.Flags().StringVar(&args.cfgFile, "cfg", "", "toml configuration file")
	cmd.Flags().IntVar(&args.workers, "workers", 0, "number of build workers, overrides dict.workers")
	cmd.Flags().BoolVar(&args.sorted, "sorted", false, "sort dictionary values, overrides dict.sorted")
	cmd.Flags().StringArrayVar(&args.columns, "columns", nil, "comma separated column group, may be repeated")
	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, args *buildArgs, file string) error {
	cfg, err := loadConfig(ctx, cmd, args)
	if err != nil {
		return err
	}
	logutil.SetupMOLogger(&cfg.Log)

	matrix, err := readMatrix(ctx, file)
	if err != nil {
		return err
	}
	groups, err := parseColumnGroups(ctx, args.columns)
	if err != nil {
		return err
	}

	start := time.Now()
	out := cmd.OutOrStdout()
	if len(groups) == 0 {
		d, err := dict.BuildParallel(ctx, matrix, cfg.DictOptions()...)
		if err != nil {
			return err
		}
		printDictionary(out, "rows", d)
	} else {
		dicts, err := dict.BuildColumnGroups(ctx, matrix, groups, cfg.DictOptions()...)
		if err != nil {
			return err
		}
		for i, d := range dicts {
			printDictionary(out, fmt.Sprintf("columns %v", groups[i]), d)
		}
	}
	logutil.Info("dictionary build finished",
		zap.String("file", file),
		zap.Int("rows", len(matrix)),
		zap.Duration("cost", time.Since(start)))

	fmt.Fprintf(out, "hash misses: %d\n", hashtable.HashMissCount())
	if cfg.Metric.Dump {
		return dumpMetrics(out)
	}
	return nil
}

func loadConfig(ctx context.Context, cmd *cobra.Command, args *buildArgs) (*config.Config, error) {
	cfg := config.NewConfig()
	if args.cfgFile != "" {
		var err error
		if cfg, err = config.ParseConfigFromFile(ctx, args.cfgFile); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("workers") {
		cfg.Dict.Workers = args.workers
	}
	if cmd.Flags().Changed("sorted") {
		cfg.Dict.Sorted = args.sorted
	}
	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readMatrix reads every record of a csv file as one row. Lines starting
// with '#' are skipped.
func readMatrix(ctx context.Context, file string) ([][]float64, error) {
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, moerr.NewFileNotFound(ctx, file)
		}
		return nil, moerr.ConvertGoError(ctx, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.TrimLeadingSpace = true

	var matrix [][]float64
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return matrix, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, moerr.NewParseError(ctx, "%s line %d: %v", file, perr.Line, perr.Err)
			}
			return nil, moerr.ConvertGoError(ctx, err)
		}
		row, err := types.FieldsToArray(ctx, record)
		if err != nil {
			return nil, err
		}
		matrix = append(matrix, row)
	}
}

func parseColumnGroups(ctx context.Context, columns []string) ([][]int, error) {
	groups := make([][]int, 0, len(columns))
	for _, c := range columns {
		var group []int
		for _, s := range strings.Split(c, ",") {
			col, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, moerr.NewInvalidArg(ctx, "columns", c)
			}
			group = append(group, col)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func printDictionary(out io.Writer, name string, d *dict.Dictionary) {
	fmt.Fprintf(out, "%s: %s\n", name, d)
	for i := 0; i < d.Cardinality(); i++ {
		if i == maxPrintValues {
			fmt.Fprintf(out, "  ... %d more\n", d.Cardinality()-maxPrintValues)
			break
		}
		fmt.Fprintf(out, "  %s x %d\n", types.ArrayToString(d.Value(i)), d.Offsets(i).Size())
	}
}

func dumpMetrics(out io.Writer) error {
	mfs, err := v2.GetPrometheusGatherer().Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}
