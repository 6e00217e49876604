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
package portal_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pvpanel/portal"
	"github.com/tidwall/gjson"
)

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		response string
		status   int
		lastBody string
		lastAuth string
	)

	BeforeEach(func() {
		ctx = context.Background()
		status = http.StatusOK
		response = `{"columns": ["ticker", "close"], "data": [["AAA", 101.5], ["BBB", null]]}`

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			lastBody = string(body)
			lastAuth = r.Header.Get("Authorization")

			w.WriteHeader(status)
			_, _ = w.Write([]byte(response))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func() *portal.Client {
		return portal.New(portal.Config{
			Endpoint: server.URL,
			Token:    "test-token",
		})
	}

	It("posts the query as a json body with bearer auth", func() {
		_, err := newClient().Submit(ctx, "SELECT 1")
		Expect(err).ToNot(HaveOccurred())

		Expect(gjson.Get(lastBody, "query").String()).To(Equal("SELECT 1"))
		Expect(lastAuth).To(Equal("Bearer test-token"))
	})

	It("parses columns and rows from a successful response", func() {
		rs, err := newClient().Submit(ctx, "SELECT ticker, close FROM sep")
		Expect(err).ToNot(HaveOccurred())

		Expect(rs.Columns).To(Equal([]string{"ticker", "close"}))
		Expect(rs.Rows).To(HaveLen(2))
		Expect(rs.Value(rs.Rows[0], "ticker").String()).To(Equal("AAA"))
		Expect(rs.Float(rs.Rows[0], "close")).To(HaveValue(Equal(101.5)))
		Expect(rs.Float(rs.Rows[1], "close")).To(BeNil())
	})

	It("maps an error field to ErrQuery", func() {
		response = `{"error": "syntax error near SELEC"}`

		_, err := newClient().Submit(ctx, "SELEC 1")
		Expect(err).To(MatchError(portal.ErrQuery))
	})

	It("maps a non-success status to ErrTransport", func() {
		status = http.StatusBadGateway

		_, err := newClient().Submit(ctx, "SELECT 1")
		Expect(err).To(MatchError(portal.ErrTransport))
	})

	It("maps an unreachable endpoint to ErrTransport", func() {
		client := portal.New(portal.Config{Endpoint: "http://127.0.0.1:1/query"})

		_, err := client.Submit(ctx, "SELECT 1")
		Expect(err).To(MatchError(portal.ErrTransport))
	})

	Describe("ResultSet", func() {
		It("flags missing columns as ErrSchema", func() {
			rs, err := newClient().Submit(ctx, "SELECT ticker, close FROM sep")
			Expect(err).ToNot(HaveOccurred())

			Expect(rs.Require("ticker", "close")).To(Succeed())
			Expect(rs.Require("ticker", "volume")).To(MatchError(portal.ErrSchema))
		})

		It("reads rows keyed by column name as well as positional rows", func() {
			response = `{"columns": ["ticker", "close"], "data": [{"ticker": "AAA", "close": 99.25}]}`

			rs, err := newClient().Submit(ctx, "SELECT ticker, close FROM sep")
			Expect(err).ToNot(HaveOccurred())

			Expect(rs.Value(rs.Rows[0], "ticker").String()).To(Equal("AAA"))
			Expect(rs.Float(rs.Rows[0], "close")).To(HaveValue(Equal(99.25)))
		})

		It("parses dates with and without a time suffix", func() {
			response = `{"columns": ["date"], "data": [["2024-03-15"], ["2024-03-16T00:00:00"]]}`

			rs, err := newClient().Submit(ctx, "SELECT date FROM sep")
			Expect(err).ToNot(HaveOccurred())

			first, err := rs.Date(rs.Rows[0], "date")
			Expect(err).ToNot(HaveOccurred())
			Expect(first.Format("2006-01-02")).To(Equal("2024-03-15"))

			second, err := rs.Date(rs.Rows[1], "date")
			Expect(err).ToNot(HaveOccurred())
			Expect(second.Format("2006-01-02")).To(Equal("2024-03-16"))
		})
	})
})
