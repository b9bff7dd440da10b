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

package domains

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	Cfg  *Config
	once sync.Once
)

const (
	DefaultSourceSchema   = "public"
	DefaultSchemaTemplate = "{{ .Table }}_{{ .PK }}"
	DefaultPlanFormat     = PlanFormatText
	pgDefaultPort         = 5432
)

const (
	PlanFormatText = "text"
	PlanFormatJson = "json"
	PlanFormatYaml = "yaml"
)

var (
	errTableIsEmpty          = errors.New("explode.table cannot be empty")
	errDatabaseIsEmpty       = errors.New("connection.dbname cannot be empty")
	errUnknownPlanFormat     = errors.New("unknown plan format")
	errSourceSchemaIsEmpty   = errors.New("explode.source_schema cannot be empty")
	errRootTableIsExcluded   = errors.New("root table cannot be excluded")
	errSchemaTemplateIsEmpty = errors.New("explode.schema_template cannot be empty")
)

func NewConfig() *Config {
	once.Do(
		func() {
			Cfg = &Config{
				Connection: Connection{
					Port: pgDefaultPort,
				},
				Explode: Explode{
					SourceSchema:   DefaultSourceSchema,
					SchemaTemplate: DefaultSchemaTemplate,
					PlanFormat:     DefaultPlanFormat,
				},
			}
		},
	)
	return Cfg
}

type Config struct {
	Log        LogConfig  `mapstructure:"log" yaml:"log" json:"log"`
	Connection Connection `mapstructure:"connection" yaml:"connection" json:"connection"`
	Explode    Explode    `mapstructure:"explode" yaml:"explode" json:"explode"`
}

func (c *Config) Validate() error {
	if err := c.Connection.Validate(); err != nil {
		return err
	}
	return c.Explode.Validate()
}

type LogConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format,omitempty"`
	Level  string `mapstructure:"level" yaml:"level" json:"level,omitempty"`
}

// Connection - libpq style connection options. DbName may contain a complete DSN or URI, in that case
// it takes precedence over the other options.
type Connection struct {
	DbName   string `mapstructure:"dbname" yaml:"dbname" json:"dbname,omitempty"`
	Host     string `mapstructure:"host" yaml:"host" json:"host,omitempty"`
	Port     int    `mapstructure:"port" yaml:"port" json:"port,omitempty"`
	UserName string `mapstructure:"username" yaml:"username" json:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password" json:"-"`
}

func (c *Connection) Validate() error {
	if c.DbName == "" {
		return errDatabaseIsEmpty
	}
	return nil
}

func (c *Connection) GetPgDSN() (string, error) {
	// URI or Standard format
	if strings.HasPrefix(c.DbName, "postgresql://") ||
		strings.HasPrefix(c.DbName, "postgres://") ||
		strings.Contains(c.DbName, "=") {
		return c.DbName, nil
	}

	var parts []string
	if c.Host != "" {
		parts = append(parts, fmt.Sprintf("host=%s", quoteDSNValue(c.Host)))
	}
	if c.Port != 0 && c.Port != pgDefaultPort {
		parts = append(parts, fmt.Sprintf("port=%d", c.Port))
	}
	if c.UserName != "" {
		parts = append(parts, fmt.Sprintf("user=%s", quoteDSNValue(c.UserName)))
	}
	if c.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", quoteDSNValue(c.Password)))
	}
	if c.DbName != "" {
		parts = append(parts, fmt.Sprintf("dbname=%s", quoteDSNValue(c.DbName)))
	}

	return strings.Join(parts, " "), nil
}

type Explode struct {
	// Table - the root table. Every root row of it produces one destination schema
	Table string `mapstructure:"table" yaml:"table" json:"table"`
	// SchemaColumn - column of the root table which value is used as destination schema name
	SchemaColumn string `mapstructure:"schema_column" yaml:"schema_column" json:"schema_column,omitempty"`
	// IDs - explode only root rows with the provided primary key values
	IDs []string `mapstructure:"ids" yaml:"ids" json:"ids,omitempty"`
	// SourceSchema - schema where the root table and its relatives live
	SourceSchema   string   `mapstructure:"source_schema" yaml:"source_schema" json:"source_schema,omitempty"`
	ExcludeTables  []string `mapstructure:"exclude_tables" yaml:"exclude_tables" json:"exclude_tables,omitempty"`
	SchemaTemplate string   `mapstructure:"schema_template" yaml:"schema_template" json:"schema_template,omitempty"`
	// When - boolean expression evaluated against each root row. Rows that evaluate to false are skipped
	When       string `mapstructure:"when" yaml:"when" json:"when,omitempty"`
	DryRun     bool   `mapstructure:"dry_run" yaml:"dry_run" json:"dry_run,omitempty"`
	PlanFormat string `mapstructure:"plan_format" yaml:"plan_format" json:"plan_format,omitempty"`
}

func (e *Explode) Validate() error {
	if e.Table == "" {
		return errTableIsEmpty
	}
	if e.SourceSchema == "" {
		return errSourceSchemaIsEmpty
	}
	if e.SchemaColumn == "" && e.SchemaTemplate == "" {
		return errSchemaTemplateIsEmpty
	}
	if slices.Contains(e.ExcludeTables, e.Table) {
		return fmt.Errorf("table %s: %w", e.Table, errRootTableIsExcluded)
	}
	switch e.PlanFormat {
	case PlanFormatText, PlanFormatJson, PlanFormatYaml:
	default:
		return fmt.Errorf("plan format %q: %w", e.PlanFormat, errUnknownPlanFormat)
	}
	return nil
}

// quoteDSNValue - quotes the value of the key=value connection string the libpq way when it is empty or
// contains spaces, quotes or backslashes.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n\\'") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
