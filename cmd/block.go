package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethereal-go/ethereal/internal/contract"
	"github.com/ethereal-go/ethereal/internal/locator"
	"github.com/ethereal-go/ethereal/internal/ui"
)

var blockClosest string

var blockCmd = &cobra.Command{
	Use:   "block <date>",
	Short: "Find the block mined closest to a date",
	Long: `Resolve a date or epoch timestamp to a block height.

With --closest before (the default) the result is the last block mined at
or before the given instant; with --closest after it is the first block
mined at or after it. When several blocks share the instant's exact
timestamp, the tightest one on the requested side is returned.

Examples:
  ethereal block 2024-01-01
  ethereal block 1704067200 --closest after
  ethereal block "2024-01-01 12:30:00" --network base`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bound, err := parseBound(blockClosest)
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

		ctx := cmd.Context()
		ts, err := contract.ParseTime(args[0])
		if err != nil {
			return err
		}

		spin := ui.NewSpinner(fmt.Sprintf("Searching %s...", c.DisplayName))
		spin.Start()
		height, err := locator.New(client).Locate(ctx, ts, bound, nil)
		spin.Stop()
		if err != nil {
			if errors.Is(err, locator.ErrOutOfRange) {
				return fmt.Errorf("%s has no block %s %s", c.DisplayName, bound, args[0])
			}
			return err
		}

		ref, err := client.HeaderByHeight(ctx, height)
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock(
			fmt.Sprintf("Block · %s", c.DisplayName),
			[][2]string{
				{"Height", ui.Val(fmt.Sprintf("%d", ref.Height))},
				{"Timestamp", ui.FormatTimestamp(time.Unix(int64(ref.Time), 0))},
				{"Closest", bound.String()},
				{"Target", ui.FormatTimestamp(time.Unix(int64(ts), 0))},
			}))
		return nil
	},
}

// parseBound maps the --closest flag to a search bound.
func parseBound(s string) (locator.Bound, error) {
	switch s {
	case "", "before":
		return locator.AtOrBefore, nil
	case "after":
		return locator.AtOrAfter, nil
	default:
		return 0, fmt.Errorf("invalid --closest %q (want before or after)", s)
	}
}

func init() {
	blockCmd.Flags().StringVar(&blockClosest, "closest", "before", "side to resolve to: before or after")
}
