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

// DisclosureRecord is one periodic financial report for an entity. Reports
// arrive at irregular, entity-specific filing dates and are far sparser than
// price periods. ReportPeriod is the end of the fiscal period the report
// covers; FilingDate is when it became public. Nothing in a record may be
// attributed to any panel period at or before FilingDate.
type DisclosureRecord struct {
	Ticker       string    `json:"ticker"`
	ReportPeriod time.Time `json:"reportperiod"`
	FilingDate   time.Time `json:"datekey"`

	// raw line items; nil when the filing did not report the item
	Assets        *float64 `json:"assets"`
	Equity        *float64 `json:"equity"`
	Debt          *float64 `json:"debt"`
	GrossProfit   *float64 `json:"gp"`
	Revenue       *float64 `json:"revenue"`
	ROE           *float64 `json:"roe"`
	GrossMargin   *float64 `json:"grossmargin"`
	AssetTurnover *float64 `json:"assetturnover"`
	EPS           *float64 `json:"eps"`
	DPS           *float64 `json:"dps"`

	// derived along the entity's disclosure sequence, before any
	// forward-fill onto the period index
	AssetGrowth *float64 `json:"asset_growth"`
	GPToAssets  *float64 `json:"gp_to_assets"`
	Leverage    *float64 `json:"leverage"`
	PayoutRatio *float64 `json:"payout_ratio"`
}
