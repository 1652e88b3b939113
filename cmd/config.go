package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethereal-go/ethereal/internal/config"
	"github.com/ethereal-go/ethereal/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))

		if config.DefaultKeystore().EtherscanKey() == "" {
			fmt.Println(ui.Hint("no explorer API key set — ABI fetches may be rate limited; set one with `ethereal config set-key <key>`"))
		}
		return nil
	},
}

var configSetDefaultNetworkCmd = &cobra.Command{
	Use:   "set-default-network <chain>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.DefaultNetwork = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %q", args[0])))
		return nil
	},
}

var configSetRPCCmd = &cobra.Command{
	Use:   "set-rpc <chain> <url>",
	Short: "Add a custom RPC for a chain",
	Long: `Add a custom RPC endpoint for a chain.

Custom RPCs are tried before the built-in public endpoints. The
ETHEREAL_RPC env var overrides both for a single invocation.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainName, url := args[0], args[1]
		if err := cfg.AddRPC(chainName, url); err != nil {
			// Already exists — not fatal.
			fmt.Println(ui.Warn(err.Error()))
			return nil
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("RPC for %s set to %s", chainName, url)))
		return nil
	},
}

var configRemoveRPCCmd = &cobra.Command{
	Use:   "remove-rpc <chain> <url>",
	Short: "Remove a custom RPC for a chain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveRPC(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("RPC removed from %s", args[0])))
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <key>",
	Short: "Store the explorer API key in the OS keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DefaultKeystore().SetEtherscanKey(args[0]); err != nil {
			return err
		}
		fmt.Println(ui.Success("Explorer API key stored in keychain"))
		return nil
	},
}

var configDeleteKeyCmd = &cobra.Command{
	Use:   "delete-key",
	Short: "Remove the stored explorer API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ui.Confirm("Remove the stored explorer API key?") {
			fmt.Println(ui.Meta("aborted"))
			return nil
		}
		if err := config.DefaultKeystore().DeleteEtherscanKey(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Explorer API key removed"))
		return nil
	},
}

func init() {
	configCmd.AddCommand(
		configListCmd,
		configSetDefaultNetworkCmd,
		configSetRPCCmd,
		configRemoveRPCCmd,
		configSetKeyCmd,
		configDeleteKeyCmd,
	)
}
