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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdInternals "github.com/greenmaskio/pgexplode/internal/db/postgres/cmd"
	"github.com/greenmaskio/pgexplode/internal/domains"
	configUtils "github.com/greenmaskio/pgexplode/internal/utils/config"
	"github.com/greenmaskio/pgexplode/internal/utils/logger"
	"github.com/greenmaskio/pgexplode/internal/utils/pgerrors"
)

const (
	envPrefix         = "PGEXPLODE"
	configDirName     = "pgexplode"
	defaultConfigName = "config.yml"
)

var (
	Version    string
	Commit     string
	CommitDate string

	RootCmd = &cobra.Command{
		Use:   "pgexplode",
		Short: "Explode a PostgreSQL table (and any related data) into separate schemas",
		Long: "Copies every row of the root table into its own schema together with all the rows " +
			"that reach it through non-nullable foreign keys. The tables that are not related to the " +
			"root table are copied in full and the foreign keys are restored inside the new schema",
		Args: cobra.NoArgs,
		Run:  run,
	}
	cfgFile string
	Config  = domains.NewConfig()
)

// flagKeys - the command flags and config keys they are bound to.
var flagKeys = map[string]string{
	"dbname":          "connection.dbname",
	"host":            "connection.host",
	"port":            "connection.port",
	"username":        "connection.username",
	"table":           "explode.table",
	"schema":          "explode.schema_column",
	"id":              "explode.ids",
	"source-schema":   "explode.source_schema",
	"exclude-table":   "explode.exclude_tables",
	"schema-template": "explode.schema_template",
	"when":            "explode.when",
	"dry-run":         "explode.dry_run",
	"plan-format":     "explode.plan_format",
}

// envKeys - libpq environment variables supported along with the prefixed ones.
var envKeys = map[string]string{
	"connection.dbname":   "PGDATABASE",
	"connection.host":     "PGHOST",
	"connection.port":     "PGPORT",
	"connection.username": "PGUSER",
	"connection.password": "PGPASSWORD",
}

func Execute() error {
	return RootCmd.Execute()
}

func run(cmd *cobra.Command, _ []string) {
	if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
		log.Fatal().Err(err).Msg("")
	}
	if err := Config.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	explode := cmdInternals.NewExplode(Config, cmd.OutOrStdout())
	if err := explode.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Fatal().Msg("interrupted")
		}
		pgerrors.Fields(log.Fatal().Err(err), err).Msg("cannot explode table")
	}
}

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				Commit = setting.Value
			}
			if setting.Key == "vcs.time" {
				CommitDate = setting.Value
			}
		}
	}
	if Version != "" {
		RootCmd.Version = fmt.Sprintf("%s %s %s", Version, Commit, CommitDate)
	} else {
		RootCmd.Version = fmt.Sprintf("%s %s", Commit, CommitDate)
	}

	cobra.OnInitialize(initConfig)
	// Removing short help flag from default. -h is used for host as in psql
	RootCmd.PersistentFlags().BoolP("help", "", false, "help for pgexplode")
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	RootCmd.PersistentFlags().StringP("log-format", "", "text", "logging format [text|json]")
	RootCmd.PersistentFlags().StringP("log-level", "", zerolog.LevelInfoValue,
		fmt.Sprintf(
			"logging level %s|%s|%s",
			zerolog.LevelDebugValue,
			zerolog.LevelInfoValue,
			zerolog.LevelWarnValue,
		),
	)

	// Connection options:
	RootCmd.Flags().StringP("dbname", "d", "", "database name, connection string or URI to connect to")
	RootCmd.Flags().StringP("host", "h", "", "database server host or socket directory")
	RootCmd.Flags().IntP("port", "p", 5432, "database server port number")
	RootCmd.Flags().StringP("username", "U", "", "connect as specified database user")

	// Explode options:
	RootCmd.Flags().StringP("table", "t", "", "the table to explode schemas based on")
	RootCmd.Flags().StringP("schema", "s", "", "column of the base table to use for schema names")
	RootCmd.Flags().StringArrayP("id", "i", []string{}, "specific row(s) to explode")
	RootCmd.Flags().StringP("source-schema", "", domains.DefaultSourceSchema, "schema of the base table")
	RootCmd.Flags().StringArrayP("exclude-table", "", []string{}, "do NOT copy the specified table(s)")
	RootCmd.Flags().StringP(
		"schema-template", "", domains.DefaultSchemaTemplate,
		"template of the schema name when --schema is not set",
	)
	RootCmd.Flags().StringP("when", "", "", "explode only the rows that match the condition")
	RootCmd.Flags().BoolP("dry-run", "", false, "print the plan without changing anything")
	RootCmd.Flags().StringP(
		"plan-format", "", domains.DefaultPlanFormat,
		fmt.Sprintf(
			"dry run plan format %s|%s|%s",
			domains.PlanFormatText, domains.PlanFormatJson, domains.PlanFormatYaml,
		),
	)

	bindFlags()
}

func bindFlags() {
	if err := viper.BindPFlag("log.format", RootCmd.PersistentFlags().Lookup("log-format")); err != nil {
		log.Fatal().Err(err).Msg("")
	}
	if err := viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		log.Fatal().Err(err).Msg("")
	}
	for flagName, key := range flagKeys {
		if err := viper.BindPFlag(key, RootCmd.Flags().Lookup(flagName)); err != nil {
			log.Fatal().Err(err).Msg("")
		}
	}
	for key, env := range envKeys {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := viper.BindEnv(key, prefixed, env); err != nil {
			log.Fatal().Err(err).Msg("")
		}
	}
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = defaultConfigFile()
	}
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal().Err(err).Msg("error reading from config file")
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.Unmarshal(Config, configUtils.DecoderConfigOption); err != nil {
		log.Fatal().Err(err).Msg("")
	}
}

// defaultConfigFile - path of the config file in the user config directory if it exists.
func defaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		log.Debug().Err(err).Msg("unable to find user config directory")
		return ""
	}
	path := filepath.Join(dir, configDirName, defaultConfigName)
	if _, err = os.Stat(path); err != nil {
		return ""
	}
	return path
}
