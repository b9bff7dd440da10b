// Copyright 2023 Greenmask
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

package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	LogFormatJsonValue = "json"
	LogFormatTextValue = "text"
)

var (
	errUnknownLogLevel  = errors.New("unknown log level")
	errUnknownLogFormat = errors.New("unknown log format")
)

// GetLogger - builds a logger writing into w. Debug level additionally prints the caller and pid.
func GetLogger(w io.Writer, logLevelStr string, logFormat string) (zerolog.Logger, error) {
	var logLevel zerolog.Level
	switch logLevelStr {
	case zerolog.LevelDebugValue:
		logLevel = zerolog.DebugLevel
	case zerolog.LevelInfoValue:
		logLevel = zerolog.InfoLevel
	case zerolog.LevelWarnValue:
		logLevel = zerolog.WarnLevel
	default:
		return zerolog.Logger{}, fmt.Errorf("log level %s: %w", logLevelStr, errUnknownLogLevel)
	}

	var formatWriter io.Writer
	switch logFormat {
	case LogFormatJsonValue:
		formatWriter = w
	case LogFormatTextValue:
		formatWriter = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Logger{}, fmt.Errorf("log format %s: %w", logFormat, errUnknownLogFormat)
	}

	if logLevelStr == zerolog.LevelDebugValue {
		return zerolog.New(formatWriter).
			Level(logLevel).
			With().
			Timestamp().
			Caller().
			Int("pid", os.Getpid()).Logger(), nil
	}
	return zerolog.New(formatWriter).
		Level(logLevel).
		With().
		Timestamp().
		Logger(), nil
}

// SetLogLevel - replaces the global logger with the stderr logger of the provided level and format.
func SetLogLevel(logLevelStr string, logFormat string) error {
	l, err := GetLogger(os.Stderr, logLevelStr, logFormat)
	if err != nil {
		return err
	}
	log.Logger = l
	zerolog.DefaultContextLogger = &log.Logger
	return nil
}
