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
package fetch_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pvpanel/data"
	"github.com/penny-vault/pvpanel/fetch"
	"github.com/penny-vault/pvpanel/portal"
	"github.com/tidwall/gjson"
)

// fakePortal answers queries by table name; failYears lists table:year
// windows that answer with a 500.
type fakePortal struct {
	server    *httptest.Server
	responses map[string]string
	failYears map[string]bool
	queries   []string
}

func newFakePortal() *fakePortal {
	fp := &fakePortal{
		responses: map[string]string{
			"sep":     `{"columns": ["ticker", "date", "close", "closeadj"], "data": []}`,
			"daily":   `{"columns": ["ticker", "date", "marketcap", "pe", "pb", "ps"], "data": []}`,
			"sf1":     `{"columns": ["ticker", "datekey", "reportperiod", "assets", "equity", "debt", "gp", "revenue", "roe", "grossmargin", "assetturnover", "eps", "dps"], "data": []}`,
			"tickers": `{"columns": ["ticker", "name", "sector", "industry", "isdelisted"], "data": []}`,
		},
		failYears: make(map[string]bool),
	}

	fp.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		query := gjson.GetBytes(body, "query").String()
		fp.queries = append(fp.queries, query)

		table := ""
		for _, candidate := range []string{"sep", "daily", "sf1", "tickers"} {
			if strings.Contains(query, fmt.Sprintf("FROM %s", candidate)) {
				table = candidate
				break
			}
		}

		for windowKey := range fp.failYears {
			parts := strings.SplitN(windowKey, ":", 2)
			if parts[0] == table && strings.Contains(query, parts[1]) {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}

		_, _ = w.Write([]byte(fp.responses[table]))
	}))

	return fp
}

func (fp *fakePortal) fetcher(startYear, endYear int) *fetch.Fetcher {
	client := portal.New(portal.Config{Endpoint: fp.server.URL, Token: "test"})
	return fetch.New(client, startYear, endYear)
}

func (fp *fakePortal) countQueries(table string) int {
	count := 0
	for _, query := range fp.queries {
		if strings.Contains(query, fmt.Sprintf("FROM %s", table)) {
			count++
		}
	}

	return count
}

var _ = Describe("Fetcher", func() {
	var (
		ctx context.Context
		fp  *fakePortal
	)

	BeforeEach(func() {
		ctx = context.Background()
		fp = newFakePortal()
	})

	AfterEach(func() {
		fp.server.Close()
	})

	Describe("Prices", func() {
		It("aggregates rows across year windows", func() {
			fp.responses["sep"] = `{"columns": ["ticker", "date", "close", "closeadj"],
				"data": [["AAA", "2023-06-05", 10.0, 9.5]]}`

			prices, skipped, err := fp.fetcher(2023, 2024).Prices(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(skipped).To(BeEmpty())

			// one canned row served for each of the two year windows
			Expect(prices).To(HaveLen(2))
			Expect(prices[0].Ticker).To(Equal("AAA"))
			Expect(prices[0].AdjClose).To(Equal(9.5))
			Expect(fp.countQueries("sep")).To(Equal(2))
		})

		It("skips a window on transport failure and keeps going", func() {
			fp.failYears["sep:2023"] = true

			_, skipped, err := fp.fetcher(2023, 2024).Prices(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(skipped).To(Equal([]string{"sep:2023"}))
		})

		It("fails the run when the portal rejects the query", func() {
			fp.responses["sep"] = `{"error": "relation sep does not exist"}`

			_, _, err := fp.fetcher(2023, 2023).Prices(ctx)
			Expect(err).To(MatchError(portal.ErrQuery))
		})

		It("fails the run when an expected column is missing", func() {
			fp.responses["sep"] = `{"columns": ["ticker", "date", "close"], "data": []}`

			_, _, err := fp.fetcher(2023, 2023).Prices(ctx)
			Expect(err).To(MatchError(portal.ErrSchema))
		})
	})

	Describe("Disclosures", func() {
		It("parses nullable fundamental items", func() {
			fp.responses["sf1"] = `{"columns": ["ticker", "datekey", "reportperiod", "assets", "equity", "debt", "gp", "revenue", "roe", "grossmargin", "assetturnover", "eps", "dps"],
				"data": [["AAA", "2023-03-01", "2022-12-31", 1000.0, null, 250.0, 120.0, 400.0, 0.15, 0.3, 0.4, 2.5, 1.0]]}`

			discs, skipped, err := fp.fetcher(2023, 2023).Disclosures(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(skipped).To(BeEmpty())

			Expect(discs).To(HaveLen(1))
			Expect(discs[0].FilingDate.Format("2006-01-02")).To(Equal("2023-03-01"))
			Expect(discs[0].ReportPeriod.Format("2006-01-02")).To(Equal("2022-12-31"))
			Expect(discs[0].Assets).To(HaveValue(Equal(1000.0)))
			Expect(discs[0].Equity).To(BeNil())
			Expect(discs[0].Debt).To(HaveValue(Equal(250.0)))
		})
	})

	Describe("Assets", func() {
		It("caches the entity table across calls", func() {
			fp.responses["tickers"] = `{"columns": ["ticker", "name", "sector", "industry", "isdelisted"],
				"data": [["AAA", "Alpha Inc", "Technology", "Software", "N"], ["ZZZ", "Omega Corp", "Energy", "Coal", "Y"]]}`

			fetcher := fp.fetcher(2023, 2023)

			assets, err := fetcher.Assets(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(assets).To(HaveLen(2))
			Expect(assets["AAA"].Sector).To(Equal("Technology"))
			Expect(assets["ZZZ"].Delisted).To(BeTrue())

			_, err = fetcher.Assets(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(fp.countQueries("tickers")).To(Equal(1))
		})
	})

	Describe("FetchAll", func() {
		It("fills the run summary with counts and skipped windows", func() {
			fp.responses["sep"] = `{"columns": ["ticker", "date", "close", "closeadj"],
				"data": [["AAA", "2024-01-08", 10.0, 9.5]]}`
			fp.failYears["daily:2023"] = true

			raw, summary, err := fp.fetcher(2023, 2024).FetchAll(ctx, data.WeeklyPanelKey)
			Expect(err).ToNot(HaveOccurred())

			Expect(raw.Prices).To(HaveLen(2))
			Expect(summary.Dataset).To(Equal(data.WeeklyPanelKey))
			Expect(summary.NumObservations).To(Equal(2))
			Expect(summary.SkippedWindows).To(Equal([]string{"daily:2023"}))
			Expect(summary.StartTime).ToNot(BeZero())
		})
	})
})
