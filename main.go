// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/sahayak-in/sahayak/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
