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

// Package portal implements the client side of the data portal's query
// endpoint: a bearer-token-authenticated POST carrying a single SQL string,
// answered with a columns array and a data array of rows (or an error
// field). Queries are issued strictly sequentially and rate limited.
package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

var (
	// ErrTransport indicates the request never completed or came back with
	// a non-success status; the affected window must not be treated as
	// fetched.
	ErrTransport = errors.New("portal transport failure")

	// ErrQuery indicates the portal accepted the call but rejected the
	// query itself; this is a contract violation, not a data condition.
	ErrQuery = errors.New("portal query failure")

	// ErrSchema indicates an expected column is absent from a result set.
	ErrSchema = errors.New("portal schema drift")
)

// Config carries every value the client needs; nothing is read from the
// process environment here.
type Config struct {
	Endpoint       string
	Token          string
	RequestTimeout time.Duration
	RateLimit      int // max requests per minute; <= 0 disables limiting
}

type Client struct {
	endpoint string
	http     *resty.Client
	limiter  *rate.Limiter
}

type queryRequest struct {
	Query string `json:"query"`
}

func New(cfg Config) *Client {
	httpClient := resty.New().
		SetAuthToken(cfg.Token).
		SetHeader("Content-Type", "application/json")

	if cfg.RequestTimeout > 0 {
		httpClient.SetTimeout(cfg.RequestTimeout)
	}

	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = 5000
	}

	return &Client{
		endpoint: cfg.Endpoint,
		http:     httpClient,
		limiter:  rate.NewLimiter(rate.Limit(float64(rateLimit)/float64(61)), 1),
	}
}

// Submit runs a single SQL query against the portal and returns the result
// set. Errors wrap ErrTransport or ErrQuery so callers can tell a dropped
// window from a broken contract.
func (client *Client) Submit(ctx context.Context, sql string) (*ResultSet, error) {
	logger := zerolog.Ctx(ctx)

	if err := client.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransport, err)
	}

	body, err := json.Marshal(queryRequest{Query: sql})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrQuery, err)
	}

	resp, err := client.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(client.endpoint)
	if err != nil {
		logger.Error().Err(err).Msg("resty returned an error when submitting portal query")
		return nil, fmt.Errorf("%w: %s", ErrTransport, err)
	}

	if resp.StatusCode() >= 300 {
		logger.Error().Int("StatusCode", resp.StatusCode()).Str("URL", resp.Request.URL).Msg("portal returned an invalid HTTP response")
		return nil, fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode())
	}

	responseBody := string(resp.Body())
	if errField := gjson.Get(responseBody, "error"); errField.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrQuery, errField.String())
	}

	return newResultSet(responseBody), nil
}
