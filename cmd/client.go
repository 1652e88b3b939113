package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ethereal-go/ethereal/internal/cache"
	"github.com/ethereal-go/ethereal/internal/chain"
	"github.com/ethereal-go/ethereal/internal/config"
	"github.com/ethereal-go/ethereal/internal/contract"
	"github.com/ethereal-go/ethereal/internal/logger"
)

// selectedChain resolves the --network flag (or the configured default) to a
// registry entry.
func selectedChain() (*chain.Chain, error) {
	name := network
	if name == "" {
		name = cfg.DefaultNetwork
	}
	c, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown chain %q — run `ethereal network list` to see all chains", name)
	}
	return c, nil
}

// newChainClient dials the selected chain using the configured endpoint
// precedence (env override, custom RPCs, built-in defaults).
func newChainClient(c *chain.Chain) (*chain.Client, error) {
	return chain.NewClient(logger.L(), cfg.RPCs(c.Name, c.RPCs)...)
}

// responseCache returns the on-disk cache, or nil when caching is disabled.
func responseCache() *cache.Cache {
	if !cfg.CacheEnabled {
		return nil
	}
	return cache.New(cfg.CacheDir())
}

// newQuerier wires the event querier: explorer ABI fetcher (proxy-resolving,
// cached) over the chain client.
func newQuerier(c *chain.Chain, client *chain.Client) *contract.Querier {
	fetcher := newFetcher(c)
	abis := contract.ABIFunc(func(ctx context.Context, address common.Address) (*contract.ContractABI, error) {
		return fetcher.Resolve(ctx, address, client)
	})
	return contract.NewQuerier(client, abis, logger.L())
}

func newFetcher(c *chain.Chain) *contract.Fetcher {
	key := config.DefaultKeystore().EtherscanKey()
	return contract.NewFetcher(c.ChainID, key,
		contract.WithCache(responseCache()),
		contract.WithLogger(logger.L()))
}

// parseAddr validates and normalizes a contract address argument.
func parseAddr(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}
