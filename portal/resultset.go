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
package portal

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// ResultSet wraps one query response. Rows come back either as positional
// arrays matching Columns or as objects keyed by column name, depending on
// the portal version; Value handles both.
type ResultSet struct {
	Columns []string
	Rows    []gjson.Result

	index map[string]int
}

func newResultSet(responseBody string) *ResultSet {
	rs := &ResultSet{
		index: make(map[string]int),
	}

	for _, col := range gjson.Get(responseBody, "columns").Array() {
		rs.index[col.String()] = len(rs.Columns)
		rs.Columns = append(rs.Columns, col.String())
	}

	rs.Rows = gjson.Get(responseBody, "data").Array()
	return rs
}

// Require fails with ErrSchema when any named column is missing from the
// result set. Schema drift halts the run; it is the one condition that must
// never degrade to null.
func (rs *ResultSet) Require(columns ...string) error {
	for _, col := range columns {
		if _, ok := rs.index[col]; !ok {
			return fmt.Errorf("%w: column %q missing (have %v)", ErrSchema, col, rs.Columns)
		}
	}

	return nil
}

// Value extracts the named column from a row.
func (rs *ResultSet) Value(row gjson.Result, column string) gjson.Result {
	if row.IsObject() {
		return row.Get(column)
	}

	idx, ok := rs.index[column]
	if !ok {
		return gjson.Result{}
	}

	return row.Get(fmt.Sprintf("%d", idx))
}

// Float returns the named column as a nullable float; empty strings and
// JSON nulls map to nil.
func (rs *ResultSet) Float(row gjson.Result, column string) *float64 {
	val := rs.Value(row, column)
	if !val.Exists() || val.Type == gjson.Null || val.String() == "" {
		return nil
	}

	f := val.Float()
	return &f
}

// Date parses the named column as a calendar date. The portal returns dates
// as strings, sometimes with a time suffix; only the date part is kept.
func (rs *ResultSet) Date(row gjson.Result, column string) (time.Time, error) {
	str := rs.Value(row, column).String()
	if len(str) > 10 {
		str = str[:10]
	}

	return time.Parse("2006-01-02", str)
}
