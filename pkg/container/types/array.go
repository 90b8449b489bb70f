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
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/matrixorigin/colcompress/pkg/common/moerr"
)

const (
	// MaxArrayDimension bounds the width of a key vector.
	MaxArrayDimension = 65536
)

type RealNumbers interface {
	constraints.Float
}

func ArrayToString[T RealNumbers](input []T) string {
	var buffer bytes.Buffer
	_, _ = io.WriteString(&buffer, "[")
	for i, value := range input {
		if i > 0 {
			_, _ = io.WriteString(&buffer, ", ")
		}
		_, _ = io.WriteString(&buffer, fmt.Sprintf("%v", value))
	}
	_, _ = io.WriteString(&buffer, "]")
	return buffer.String()
}

func ArraysToString[T RealNumbers](input [][]T) string {
	strValues := make([]string, len(input))
	for i, row := range input {
		strValues[i] = ArrayToString[T](row)
	}
	return strings.Join(strValues, " ")
}

// FieldsToArray parses one record of numeric text fields, as read from a
// csv line, into a float64 row.
func FieldsToArray(ctx context.Context, fields []string) ([]float64, error) {
	if len(fields) == 0 {
		return nil, moerr.NewInvalidInput(ctx, "row must not be of zero size")
	}
	if len(fields) > MaxArrayDimension {
		return nil, moerr.NewInvalidInput(ctx, "row width is over the maximum dimensions: %v", MaxArrayDimension)
	}

	result := make([]float64, len(fields))
	for i, field := range fields {
		num, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, moerr.NewParseError(ctx, "error while casting %q to FLOAT64", field)
		}
		result[i] = num
	}
	return result, nil
}
