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
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/greenmaskio/pgexplode/internal/db/postgres/replicate"
	"github.com/greenmaskio/pgexplode/internal/domains"
	stringsUtils "github.com/greenmaskio/pgexplode/internal/utils/strings"
)

const planQueryWidth = 80

func writePlans(w io.Writer, format string, plans []*replicate.Plan) error {
	if plans == nil {
		plans = []*replicate.Plan{}
	}
	switch format {
	case domains.PlanFormatJson:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plans)
	case domains.PlanFormatYaml:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plans); err != nil {
			return err
		}
		return enc.Close()
	case domains.PlanFormatText, "":
		return writeTextPlans(w, plans)
	}
	return fmt.Errorf("unknown plan format %q", format)
}

func writeTextPlans(w io.Writer, plans []*replicate.Plan) error {
	for _, plan := range plans {
		if _, err := fmt.Fprintf(w, "+ %s (root id %v)\n", plan.Schema, plan.RootID); err != nil {
			return err
		}
		prettyWriter := tablewriter.NewWriter(w)
		prettyWriter.SetHeader([]string{"#", "Table", "Path", "Query"})
		prettyWriter.SetAutoWrapText(false)
		prettyWriter.SetAlignment(tablewriter.ALIGN_LEFT)
		prettyWriter.SetRowLine(true)
		for idx, t := range plan.Tables {
			prettyWriter.Append([]string{
				fmt.Sprintf("%d", idx+1), t.Table, t.Path, stringsUtils.WrapString(t.Query, planQueryWidth),
			})
		}
		prettyWriter.Render()
	}
	return nil
}
