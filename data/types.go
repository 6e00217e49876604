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

import (
	"time"

	"github.com/google/uuid"
)

const (
	WeeklyPanelKey  = "weekly-panel"
	MonthlyPanelKey = "monthly-panel"
)

// RunSummary describes a single panel build: when it ran, how many raw
// observations were consumed, how many panel rows were produced, and which
// fetch windows were skipped because of transport failures.
type RunSummary struct {
	RunID   uuid.UUID
	Dataset string

	StartTime time.Time
	EndTime   time.Time

	NumObservations int
	NumRows         int
	NumEntities     int

	SkippedWindows []string
}

// Asset holds the static entity metadata attached to every panel row.
// Delisted entities are kept so historical rows survive delisting.
type Asset struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
	Delisted bool   `json:"delisted"`
}
