// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/sahayak-in/sahayak/finder"
	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the searchable service categories",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		a, b, c := strings.Repeat("─", 14), strings.Repeat("─", 9), strings.Repeat("─", 22)
		fmt.Println("Available categories:")
		fmt.Printf("╭─%-14s─┬─%-9s─┬─%-22s╮\n", a, b, c)
		fmt.Printf("│ %-14s │ %-9s │ %-22s│\n", "Category", "Group", "Filter")
		fmt.Printf("├─%-14s─┼─%-9s─┼─%-22s┤\n", a, b, c)
		err := finder.Each(func(cat finder.Category) error {
			fmt.Printf("│ %-14s │ %-9s │ %-22s│\n", cat.Name, cat.Group, cat.Filter)

			return nil
		})
		fmt.Printf("╰─%-14s─┴─%-9s─┴─%-22s╯\n", a, b, c)

		return err
	},
}

var helplinesCmd = &cobra.Command{
	Use:   "helplines",
	Short: "Print the national emergency helpline numbers",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Println("Emergency helplines (all India):")
		for _, h := range finder.Helplines() {
			fmt.Printf("  %-20s %s\n", h.Service, h.Number)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(helplinesCmd)
}
