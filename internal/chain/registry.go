package chain

import (
	"errors"
	"sort"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Chain holds the metadata needed to talk to one EVM network.
type Chain struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	NativeCurrency string   `json:"native_currency"`
	RPCs           []string `json:"rpcs"`
}

// Registry is the built-in chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry creates the registry of all supported chains.
func NewRegistry() *Registry {
	chains := allChains()
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
	}
	return r
}

// All returns every chain in the registry.
func (r *Registry) All() []Chain {
	return r.chains
}

// Names returns all chain slugs, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.chains))
	for _, c := range r.chains {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// GetByName finds a chain by its slug (e.g. "ethereum", "polygon").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

func allChains() []Chain {
	return []Chain{
		{
			Name:           "ethereum",
			DisplayName:    "Ethereum",
			ChainID:        1,
			NativeCurrency: "ETH",
			RPCs: []string{
				"https://eth.llamarpc.com",
				"https://ethereum-rpc.publicnode.com",
				"https://rpc.ankr.com/eth",
			},
		},
		{
			Name:           "polygon",
			DisplayName:    "Polygon",
			ChainID:        137,
			NativeCurrency: "POL",
			RPCs: []string{
				"https://polygon-rpc.com",
				"https://polygon-bor-rpc.publicnode.com",
			},
		},
		{
			Name:           "arbitrum",
			DisplayName:    "Arbitrum One",
			ChainID:        42161,
			NativeCurrency: "ETH",
			RPCs: []string{
				"https://arb1.arbitrum.io/rpc",
				"https://arbitrum-one-rpc.publicnode.com",
			},
		},
		{
			Name:           "optimism",
			DisplayName:    "OP Mainnet",
			ChainID:        10,
			NativeCurrency: "ETH",
			RPCs: []string{
				"https://mainnet.optimism.io",
				"https://optimism-rpc.publicnode.com",
			},
		},
		{
			Name:           "base",
			DisplayName:    "Base",
			ChainID:        8453,
			NativeCurrency: "ETH",
			RPCs: []string{
				"https://mainnet.base.org",
				"https://base-rpc.publicnode.com",
			},
		},
		{
			Name:           "avalanche",
			DisplayName:    "Avalanche C-Chain",
			ChainID:        43114,
			NativeCurrency: "AVAX",
			RPCs: []string{
				"https://api.avax.network/ext/bc/C/rpc",
				"https://avalanche-c-chain-rpc.publicnode.com",
			},
		},
		{
			Name:           "fantom",
			DisplayName:    "Fantom Opera",
			ChainID:        250,
			NativeCurrency: "FTM",
			RPCs: []string{
				"https://rpcapi.fantom.network",
				"https://fantom-rpc.publicnode.com",
			},
		},
		{
			Name:           "bnb",
			DisplayName:    "BNB Smart Chain",
			ChainID:        56,
			NativeCurrency: "BNB",
			RPCs: []string{
				"https://bsc-dataseed.bnbchain.org",
				"https://bsc-rpc.publicnode.com",
			},
		},
		{
			Name:           "gnosis",
			DisplayName:    "Gnosis",
			ChainID:        100,
			NativeCurrency: "xDAI",
			RPCs: []string{
				"https://rpc.gnosischain.com",
				"https://gnosis-rpc.publicnode.com",
			},
		},
	}
}
