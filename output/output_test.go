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
package output_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pvpanel/data"
	"github.com/penny-vault/pvpanel/output"
)

func fptr(v float64) *float64 {
	return &v
}

var _ = Describe("ArtifactName", func() {
	It("slugs the dataset and appends the build date", func() {
		Expect(output.ArtifactName(data.WeeklyPanelKey, "20240315", "parquet")).
			To(Equal("weekly-panel-20240315.parquet"))
	})
})

var _ = Describe("SaveToCSV", func() {
	var rows []*data.PanelRow

	BeforeEach(func() {
		size := "Mega-Cap"
		rows = []*data.PanelRow{
			{
				Ticker:    "AAA",
				Period:    "2024-03",
				Return:    fptr(0.05),
				MarketCap: fptr(1500),
				Sector:    "Technology",
				Size:      &size,
			},
			{
				Ticker: "BBB",
				Period: "2024-03",
			},
		}
	})

	It("writes a header in panel column order and empty cells for nulls", func() {
		fn := filepath.Join(GinkgoT().TempDir(), "panel.csv")
		Expect(output.SaveToCSV(rows, fn)).To(Succeed())

		contents, err := os.ReadFile(fn)
		Expect(err).ToNot(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
		Expect(lines).To(HaveLen(3))
		Expect(lines[0]).To(HavePrefix("ticker,period,return,momentum,lagged_return,close,marketcap"))
		Expect(lines[1]).To(HavePrefix("AAA,2024-03,0.05,,"))
		Expect(lines[2]).To(HavePrefix("BBB,2024-03,,,"))
	})
})

var _ = Describe("SaveToParquet", func() {
	It("writes a non-empty parquet artifact", func() {
		rows := []*data.PanelRow{
			{Ticker: "AAA", Period: "2024-03", Return: fptr(0.05)},
		}

		fn := filepath.Join(GinkgoT().TempDir(), "panel.parquet")
		Expect(output.SaveToParquet(rows, fn)).To(Succeed())

		info, err := os.Stat(fn)
		Expect(err).ToNot(HaveOccurred())
		Expect(info.Size()).To(BeNumerically(">", 0))
	})
})
