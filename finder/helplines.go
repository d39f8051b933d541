// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package finder

// Helpline is one national emergency number.
type Helpline struct {
	Service string `json:"service"`
	Number  string `json:"number"`
}

// helplines are the all-India emergency numbers, independent of any
// search.
var helplines = []Helpline{
	{Service: "Police", Number: "100"},
	{Service: "Fire", Number: "101"},
	{Service: "Ambulance", Number: "108"},
	{Service: "Women Helpline", Number: "1091"},
	{Service: "Disaster Management", Number: "1078"},
}

// Helplines returns the national emergency numbers.
func Helplines() []Helpline {
	out := make([]Helpline, len(helplines))
	copy(out, helplines)

	return out
}
