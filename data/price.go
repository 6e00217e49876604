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
package data

import "time"

// PriceObservation is a single raw trade-price row from the portal's price
// table. AdjClose is split- and dividend-adjusted and is used only for
// return computation; Close is the raw price exposed downstream.
type PriceObservation struct {
	Ticker   string    `json:"ticker"`
	Date     time.Time `json:"date"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"closeadj"`
}

// ValuationObservation is a single raw row from the portal's daily metrics
// table. The valuation venue publishes independently of the price venue, so
// any field (or the whole row for a period) may be missing; nil means the
// venue had no value for that date.
type ValuationObservation struct {
	Ticker    string    `json:"ticker"`
	Date      time.Time `json:"date"`
	MarketCap *float64  `json:"marketcap"`
	PE        *float64  `json:"pe"`
	PB        *float64  `json:"pb"`
	PS        *float64  `json:"ps"`
}
