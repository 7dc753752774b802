package cmd

import (
	"fmt"

	"github.com/gigscope/gigscope/pkg/browse"
	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories present in the current catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printFacet(cmd, (*browse.Catalog).Categories)
	},
}

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "List the cities present in the current catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printFacet(cmd, (*browse.Catalog).Cities)
	},
}

func printFacet(cmd *cobra.Command, facet func(*browse.Catalog) []string) error {
	c, err := buildCatalog(cmd, buildNotifier(), nil)
	if err != nil {
		return err
	}
	if out := c.Refresh(cmd.Context()); out.Err != nil {
		return out.Err
	}
	for _, v := range facet(c) {
		fmt.Println(v)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(citiesCmd)
}
