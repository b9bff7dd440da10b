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
	"bytes"
	"errors"
	"fmt"
	"text/template"
	"unicode/utf8"

	"github.com/Masterminds/sprig/v3"
	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"
	"github.com/spf13/cast"
)

// maxIdentifierLength - NAMEDATALEN - 1 of the default PostgreSQL build.
const maxIdentifierLength = 63

var (
	errColumnNotFound  = errors.New("column not found in root row")
	errNullValue       = errors.New("value is NULL")
	errEmptySchemaName = errors.New("destination schema name is empty")
)

// RootRow - one row of the root table. Keys are column names.
type RootRow map[string]any

// schemaNameData - data available in the schema name template.
type schemaNameData struct {
	Table string
	PK    string
	Row   map[string]string
}

// SchemaNamer - produces the destination schema name of a root row. The value of the schema column
// is used when it is set, otherwise the template is rendered.
type SchemaNamer struct {
	table    string
	pkColumn string
	column   string
	tmpl     *template.Template
}

func NewSchemaNamer(table, pkColumn, column, schemaTemplate string) (*SchemaNamer, error) {
	n := &SchemaNamer{
		table:    table,
		pkColumn: pkColumn,
		column:   column,
	}
	if column != "" {
		return n, nil
	}
	tmpl, err := template.New("schema_name").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(schemaTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse schema name template: %w", err)
	}
	n.tmpl = tmpl
	return n, nil
}

func (n *SchemaNamer) Name(row RootRow) (string, error) {
	if n.column != "" {
		v, ok := row[n.column]
		if !ok {
			return "", fmt.Errorf("column %s: %w", n.column, errColumnNotFound)
		}
		name, err := FormatValue(v)
		if err != nil {
			return "", fmt.Errorf("column %s: %w", n.column, err)
		}
		if name == "" {
			return "", errEmptySchemaName
		}
		return fitIdentifier(name), nil
	}

	pk, ok := row[n.pkColumn]
	if !ok {
		return "", fmt.Errorf("column %s: %w", n.pkColumn, errColumnNotFound)
	}
	data := schemaNameData{
		Table: n.table,
		Row:   make(map[string]string, len(row)),
	}
	var err error
	if data.PK, err = FormatValue(pk); err != nil {
		return "", fmt.Errorf("column %s: %w", n.pkColumn, err)
	}
	for k, v := range row {
		if v == nil {
			continue
		}
		if data.Row[k], err = FormatValue(v); err != nil {
			return "", fmt.Errorf("column %s: %w", k, err)
		}
	}

	buf := bytes.NewBuffer(nil)
	if err = n.tmpl.Execute(buf, data); err != nil {
		return "", fmt.Errorf("render schema name template: %w", err)
	}
	if buf.Len() == 0 {
		return "", errEmptySchemaName
	}
	return fitIdentifier(buf.String()), nil
}

// fitIdentifier - PostgreSQL silently truncates long identifiers. Longer names are cut and suffixed
// with the murmur3 hash of the full name, so two long names sharing a prefix stay distinct.
func fitIdentifier(name string) string {
	if len(name) <= maxIdentifierLength {
		return name
	}
	suffix := fmt.Sprintf("_%08x", murmur3.Sum32([]byte(name)))
	cut := maxIdentifierLength - len(suffix)
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut] + suffix
}

// FormatValue - text representation of a column value decoded by pgx.
func FormatValue(v any) (string, error) {
	switch vv := v.(type) {
	case nil:
		return "", errNullValue
	case string:
		return vv, nil
	case [16]byte:
		return uuid.UUID(vv).String(), nil
	case []byte:
		return string(vv), nil
	case fmt.Stringer:
		return vv.String(), nil
	}
	res, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("format value of type %T: %w", v, err)
	}
	return res, nil
}
