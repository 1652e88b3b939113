package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethereal-go/ethereal/internal/chain"
	"github.com/ethereal-go/ethereal/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all supported chains",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 12},
			{Title: "Display", Width: 20},
			{Title: "Chain ID", Width: 10},
			{Title: "Currency", Width: 10},
			{Title: "RPCs", Width: 6},
		})

		for _, c := range reg.All() {
			name := c.Name
			if c.Name == cfg.DefaultNetwork {
				name = c.Name + " *"
			}
			t.AddRow(ui.Row{
				ui.ChainName(name),
				c.DisplayName,
				fmt.Sprintf("%d", c.ChainID),
				c.NativeCurrency,
				fmt.Sprintf("%d", len(cfg.RPCs(c.Name, c.RPCs))),
			})
		}

		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d chains total · * = default", len(reg.All()))))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <chain>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if _, err := chain.NewRegistry().GetByName(name); err != nil {
			return fmt.Errorf("unknown chain %q — run `ethereal network list` to see all chains", name)
		}

		cfg.DefaultNetwork = name
		if err := cfg.Save(); err != nil {
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %s", ui.ChainName(name))))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}
