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

package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// DecoderConfigOption - viper.DecoderConfigOption compatible function that installs the decode hooks used
// for the config. Environment variables always come as strings, so the slice options (such as explode.ids)
// accept either a JSON array or a comma separated list.
func DecoderConfigOption(cfg *mapstructure.DecoderConfig) {
	cfg.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		StringToSliceWithBracketHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// StringToSliceWithBracketHookFunc - decodes JSON array string into the string slice. Non-string elements
// are kept in their JSON representation, so ["1", 2] becomes []string{"1", "2"}.
func StringToSliceWithBracketHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Kind,
		t reflect.Kind,
		data interface{}) (interface{}, error) {
		if f != reflect.String || t != reflect.Slice {
			return data, nil
		}

		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return []string{}, nil
		}
		if !strings.HasPrefix(raw, "[") {
			return data, nil
		}
		var slice []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &slice); err != nil {
			return nil, fmt.Errorf("cannot decode %q as JSON array: %w", raw, err)
		}

		strSlice := make([]string, 0, len(slice))
		for _, v := range slice {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				strSlice = append(strSlice, s)
				continue
			}
			strSlice = append(strSlice, string(v))
		}
		return strSlice, nil
	}
}
