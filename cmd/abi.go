package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ethereal-go/ethereal/internal/contract"
	"github.com/ethereal-go/ethereal/internal/ui"
)

var abiRaw bool

var abiCmd = &cobra.Command{
	Use:   "abi <contract>",
	Short: "Fetch a verified contract's ABI",
	Long: `Fetch the ABI of a verified contract from the block explorer.

Proxies are followed: when the verified ABI exposes implementation(),
the implementation contract's ABI is returned instead. Fetched ABIs are
cached on disk.

Examples:
  ethereal abi 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48
  ethereal abi 0xdAC17F958D2ee523a2206206994597C13D831ec7 --raw`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddr(args[0])
		if err != nil {
			return err
		}

		c, err := selectedChain()
		if err != nil {
			return err
		}
		client, err := newChainClient(c)
		if err != nil {
			return err
		}
		defer client.Close()

		spin := ui.NewSpinner(fmt.Sprintf("Fetching ABI on %s...", c.DisplayName))
		spin.Start()
		abi, err := newFetcher(c).Resolve(cmd.Context(), addr, client)
		spin.Stop()
		if err != nil {
			if errors.Is(err, contract.ErrABIUnavailable) {
				return fmt.Errorf("no verified ABI for %s on %s — is the contract verified?", ui.TruncateAddr(addr.Hex()), c.DisplayName)
			}
			return err
		}

		if abiRaw {
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, abi.Raw, "", "  "); err != nil {
				return err
			}
			fmt.Println(pretty.String())
			return nil
		}

		funcs, events := 0, 0
		for _, e := range abi.Entries {
			switch e.Type {
			case "function":
				funcs++
			case "event":
				events++
			}
		}
		fmt.Println(ui.KeyValueBlock(
			fmt.Sprintf("ABI · %s", c.DisplayName),
			[][2]string{
				{"Contract", ui.Addr(addr.Hex())},
				{"Entries", fmt.Sprintf("%d", len(abi.Entries))},
				{"Functions", fmt.Sprintf("%d", funcs)},
				{"Events", fmt.Sprintf("%d", events)},
			}))
		for _, def := range abi.Events() {
			fmt.Println("  " + ui.EventName(def.Name) + "  " + ui.Meta(def.Describe()))
		}
		fmt.Println(ui.Hint("use --raw for the full ABI JSON"))
		return nil
	},
}

func init() {
	abiCmd.Flags().BoolVar(&abiRaw, "raw", false, "print the raw ABI JSON")
}
