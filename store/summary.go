// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/penny-vault/pvpanel/data"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a description of the panel store in markdown
func (myStore *Store) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString("# Panel Store\n\n"); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(fmt.Sprintf("Database: %s\n\n", myStore.DBUrl)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Datasets\n\n"); err != nil {
		return "", err
	}

	for _, dataset := range []string{data.WeeklyPanelKey, data.MonthlyPanelKey} {
		numRows, err := myStore.NumRows(ctx, dataset)
		if err != nil {
			return "", err
		}

		numEntities, err := myStore.NumEntities(ctx, dataset)
		if err != nil {
			return "", err
		}

		lastBuild, err := myStore.LastBuild(ctx, dataset)
		if err != nil {
			return "", err
		}

		age := "never built"
		if !lastBuild.Equal(time.Time{}) {
			age = timeago.English.Format(lastBuild)
		}

		if _, err := builder.WriteString(p.Sprintf("  * %s: %d rows / %d entities (last build: %s)\n",
			dataset, numRows, numEntities, age)); err != nil {
			return "", err
		}
	}

	if _, err := builder.WriteString("\n## Recent Builds\n\n"); err != nil {
		return "", err
	}

	builds, err := myStore.Builds(ctx)
	if err != nil {
		return "", err
	}

	if len(builds) > 10 {
		builds = builds[:10]
	}

	for _, build := range builds {
		line := p.Sprintf("  * %s %s: %d rows from %d observations", build.EndTime.Local().Format("01/02/2006 15:04"),
			build.Dataset, build.NumRows, build.NumObservations)

		if len(build.SkippedWindows) > 0 {
			line = p.Sprintf("%s (%d windows skipped)", line, len(build.SkippedWindows))
		}

		if _, err := builder.WriteString(line + "\n"); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}
