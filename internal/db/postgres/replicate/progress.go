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
	"io"
)

// Reporter - receives the progress of the replication.
type Reporter interface {
	SchemaCreated(schema string)
	TableCopied(table string, rows int64)
}

// ConsoleReporter - prints "+ <schema>" for every created schema and "  ~ <table>: <rows>" for every copied table.
type ConsoleReporter struct {
	w io.Writer
}

func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

func (r *ConsoleReporter) SchemaCreated(schema string) {
	_, _ = fmt.Fprintf(r.w, "+ %s\n", schema)
}

func (r *ConsoleReporter) TableCopied(table string, rows int64) {
	_, _ = fmt.Fprintf(r.w, "  ~ %s: %d\n", table, rows)
}

type nopReporter struct{}

func (nopReporter) SchemaCreated(string) {}

func (nopReporter) TableCopied(string, int64) {}
