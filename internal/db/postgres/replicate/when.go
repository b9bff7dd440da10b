// Copyright 2025 Greenmask
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package replicate

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const recordExprNamespace = "record"

// RowFilter - decides whether a root row is exploded. The expression accesses the row columns through
// the record namespace, for instance:
//
//	record.status == "active" && record.id > 10
//
// An empty expression matches every row.
type RowFilter struct {
	when    string
	program *vm.Program
}

func NewRowFilter(when string) (*RowFilter, error) {
	f := &RowFilter{when: when}
	if when == "" {
		return f, nil
	}
	log.Debug().
		Str("When", when).
		Msg("compiling root row condition")
	program, err := expr.Compile(
		when,
		expr.Env(map[string]any{recordExprNamespace: map[string]any{}}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile when condition: %w", err)
	}
	f.program = program
	return f, nil
}

func (f *RowFilter) Match(row RootRow) (bool, error) {
	if f.program == nil {
		return true, nil
	}
	record := make(map[string]any, len(row))
	for k, v := range row {
		record[k] = exprValue(v)
	}
	output, err := expr.Run(f.program, map[string]any{recordExprNamespace: record})
	if err != nil {
		return false, fmt.Errorf("evaluate when condition: %w", err)
	}
	res, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("when condition should return boolean, got (%T) and value %+v", output, output)
	}
	return res, nil
}

// exprValue converts the value decoded by pgx into one of the types expr operates on:
// nil, bool, int, float64, string, array, map.
func exprValue(v any) any {
	switch vv := v.(type) {
	case int64:
		return int(vv)
	case int32:
		return int(vv)
	case int16:
		return int(vv)
	case int8:
		return int(vv)
	case uint64:
		return int(vv)
	case uint32:
		return int(vv)
	case uint16:
		return int(vv)
	case uint8:
		return int(vv)
	case float32:
		return float64(vv)
	case decimal.Decimal:
		return vv.InexactFloat64()
	case [16]byte:
		return uuid.UUID(vv).String()
	}
	return v
}
