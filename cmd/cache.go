package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethereal-go/ethereal/internal/cache"
	"github.com/ethereal-go/ethereal/internal/ui"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached explorer responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cache.New(cfg.CacheDir())
		n := c.Len()
		if err := c.Clear(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Cleared %d cached entries", n)))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}
