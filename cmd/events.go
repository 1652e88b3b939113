package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/ethereal-go/ethereal/internal/contract"
	"github.com/ethereal-go/ethereal/internal/locator"
	"github.com/ethereal-go/ethereal/internal/ui"
)

var (
	eventsFrom     string
	eventsTo       string
	eventsJSON     bool
	eventsDecimals int
)

var eventsCmd = &cobra.Command{
	Use:   "events <contract>",
	Short: "List the events a contract declares",
	Long: `List the event signatures a verified contract declares, in ABI order.

Examples:
  ethereal events 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48
  ethereal events 0xUSDC --network polygon`,
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
		defs, err := newQuerier(c, client).Events(cmd.Context(), addr)
		spin.Stop()
		if err != nil {
			return err
		}

		if len(defs) == 0 {
			fmt.Println(ui.Info(fmt.Sprintf("%s declares no events", ui.TruncateAddr(addr.Hex()))))
			return nil
		}

		fmt.Println(ui.StyleTitle.Render(fmt.Sprintf("Events · %s", ui.TruncateAddr(addr.Hex()))))
		for _, def := range defs {
			fmt.Println("  " + ui.EventName(def.Name) + "  " + ui.Meta(def.Describe()))
		}
		fmt.Println()
		fmt.Println(ui.Hint("query occurrences with: ethereal events query <contract> <event> --from <date> --to <date>"))
		return nil
	},
}

var eventsQueryCmd = &cobra.Command{
	Use:   "query <contract> [event]",
	Short: "Query event occurrences between two dates",
	Long: `Fetch every occurrence of an event emitted between two dates.

Dates are epoch seconds or calendar dates, interpreted in UTC, and both
ends of the range are inclusive. When the event name is omitted an
interactive picker lists the contract's events.

Each record carries an estimated timestamp interpolated from the
resolved range's boundary blocks.

Examples:
  ethereal events query 0xUSDC Transfer --from 2024-01-01 --to 2024-01-02
  ethereal events query 0xUSDC --from 1704067200 --to 1704153600 --json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		if eventsFrom == "" || eventsTo == "" {
			return fmt.Errorf("both --from and --to are required")
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
		q := newQuerier(c, client)

		event := ""
		if len(args) == 2 {
			event = args[1]
		} else {
			event, err = pickEvent(ctx, q, addr)
			if err != nil {
				return err
			}
			if event == "" {
				return nil // cancelled
			}
		}

		spin := ui.NewSpinner(fmt.Sprintf("Querying %s on %s...", event, c.DisplayName))
		spin.Start()
		records, err := q.QueryEvents(ctx, addr, event, eventsFrom, eventsTo)
		spin.Stop()
		if err != nil {
			switch {
			case errors.Is(err, contract.ErrInvalidDate):
				return fmt.Errorf("invalid date range: %w", err)
			case errors.Is(err, contract.ErrUnknownEvent):
				return fmt.Errorf("%s does not declare %q — run `ethereal events %s` to list its events", ui.TruncateAddr(addr.Hex()), event, args[0])
			case errors.Is(err, locator.ErrOutOfRange):
				return fmt.Errorf("date range falls outside %s's history", c.DisplayName)
			}
			return err
		}

		if eventsJSON {
			out, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		if len(records) == 0 {
			fmt.Println(ui.Info(fmt.Sprintf("No %s events between %s and %s", event, eventsFrom, eventsTo)))
			return nil
		}

		fmt.Println(ui.KeyValueBlock(
			fmt.Sprintf("%s · %s", event, c.DisplayName),
			[][2]string{
				{"Contract", ui.Addr(addr.Hex())},
				{"Range", fmt.Sprintf("%s → %s", eventsFrom, eventsTo)},
				{"Found", fmt.Sprintf("%d events", len(records))},
			}))
		fmt.Println()

		for i, rec := range records {
			pairs := [][2]string{
				{"Block", fmt.Sprintf("%d", rec.BlockNumber)},
				{"Tx", ui.Addr(rec.TxHash.Hex())},
				{"Log Index", fmt.Sprintf("%d", rec.LogIndex)},
				{"Estimated At", ui.FormatTimestamp(rec.EstimatedAt)},
			}
			for _, name := range sortedArgNames(rec.Args) {
				pairs = append(pairs, [2]string{name, formatEventArg(rec.Args[name])})
			}
			fmt.Println(ui.KeyValueBlock(fmt.Sprintf("#%d %s", i+1, rec.Signature), pairs))
		}
		return nil
	},
}

// pickEvent runs the interactive event picker for a contract. Returns ""
// when the user cancels.
func pickEvent(ctx context.Context, q *contract.Querier, addr common.Address) (string, error) {
	defs, err := q.Events(ctx, addr)
	if err != nil {
		return "", err
	}
	if len(defs) == 0 {
		return "", fmt.Errorf("%s declares no events", ui.TruncateAddr(addr.Hex()))
	}

	items := make([]ui.PickerItem, 0, len(defs))
	for _, def := range defs {
		items = append(items, ui.PickerItem{
			Label:    def.Name,
			SubLabel: def.Describe(),
			Value:    def.Name,
		})
	}
	return ui.PickItem("Pick an event", items)
}

// formatEventArg renders a decoded argument, scaling integer amounts down by
// --decimals when set.
func formatEventArg(v any) string {
	if eventsDecimals >= 0 {
		if amount, ok := v.(*big.Int); ok {
			return ui.FormatUnits(amount, int32(eventsDecimals))
		}
	}
	return ui.FormatArg(v)
}

// sortedArgNames returns the decoded argument names in stable order.
func sortedArgNames(args map[string]any) []string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	eventsQueryCmd.Flags().StringVar(&eventsFrom, "from", "", "range start (epoch seconds or calendar date, inclusive)")
	eventsQueryCmd.Flags().StringVar(&eventsTo, "to", "", "range end (inclusive)")
	eventsQueryCmd.Flags().BoolVar(&eventsJSON, "json", false, "print records as JSON")
	eventsQueryCmd.Flags().IntVar(&eventsDecimals, "decimals", -1, "scale integer amounts down by this many decimals (e.g. 18 for most ERC-20s)")
	eventsCmd.AddCommand(eventsQueryCmd)
}
