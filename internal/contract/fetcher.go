package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ethereal-go/ethereal/internal/cache"
)

// ErrABIUnavailable is returned when a contract's ABI cannot be fetched,
// typically because the contract is not verified on the explorer.
var ErrABIUnavailable = errors.New("contract ABI unavailable")

// Etherscan V2 unified API; the chain is selected via the chainid parameter.
const etherscanBaseURL = "https://api.etherscan.io/v2/api"

// implementation() selector, used to probe proxies that expose their target.
var implementationSelector = []byte{0x5c, 0x60, 0xda, 0x1b}

// EIP-1967 implementation slot: keccak256("eip1967.proxy.implementation") - 1.
var eip1967ImplSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")

// StateReader is the chain capability proxy resolution needs.
type StateReader interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	StorageAt(ctx context.Context, addr common.Address, slot common.Hash) ([]byte, error)
}

// Fetcher retrieves contract ABIs from an Etherscan-compatible explorer API.
type Fetcher struct {
	client  *http.Client
	chainID int64
	apiKey  string
	baseURL string
	cache   *cache.Cache
	log     *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithBaseURL overrides the explorer API base URL (used in tests).
func WithBaseURL(url string) FetcherOption {
	return func(f *Fetcher) { f.baseURL = url }
}

// WithCache enables caching of fetched ABIs.
func WithCache(c *cache.Cache) FetcherOption {
	return func(f *Fetcher) { f.cache = c }
}

// WithLogger sets the fetcher's logger.
func WithLogger(log *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.log = log }
}

// NewFetcher creates an ABI fetcher for the given chain ID.
func NewFetcher(chainID int64, apiKey string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: 15 * time.Second},
		chainID: chainID,
		apiKey:  apiKey,
		baseURL: etherscanBaseURL,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the ABI verified for address, without proxy resolution.
func (f *Fetcher) Fetch(ctx context.Context, address common.Address) (*ContractABI, error) {
	key := cache.Key("abi", f.chainID, address.Hex())
	raw, err := cache.ReadOrFetch(f.cache, key, func() (string, error) {
		return f.fetchRaw(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return ParseABI([]byte(raw))
}

// Resolve returns the ABI for address, following proxies: if the verified ABI
// exposes implementation(), the implementation address is read (first via the
// call, then via the EIP-1967 slot when the call reverts) and its ABI is
// fetched instead.
func (f *Fetcher) Resolve(ctx context.Context, address common.Address, state StateReader) (*ContractABI, error) {
	abi, err := f.Fetch(ctx, address)
	if err != nil {
		return nil, err
	}
	if !declaresImplementation(abi) {
		return abi, nil
	}

	impl, err := f.implementationAddress(ctx, address, state)
	if err != nil {
		f.log.Debug("proxy resolution failed, using proxy ABI", "address", address, "err", err)
		return abi, nil
	}
	if impl == (common.Address{}) || impl == address {
		return abi, nil
	}

	f.log.Debug("resolved proxy implementation", "proxy", address, "implementation", impl)
	return f.Fetch(ctx, impl)
}

func (f *Fetcher) implementationAddress(ctx context.Context, address common.Address, state StateReader) (common.Address, error) {
	out, err := state.CallContract(ctx, ethereum.CallMsg{To: &address, Data: implementationSelector})
	if err == nil && len(out) == 32 {
		return common.BytesToAddress(out[12:]), nil
	}

	// Transparent proxies revert admin-gated calls; fall back to the slot.
	word, slotErr := state.StorageAt(ctx, address, eip1967ImplSlot)
	if slotErr != nil {
		return common.Address{}, fmt.Errorf("implementation() call and EIP-1967 slot both failed: %v; %w", err, slotErr)
	}
	return common.BytesToAddress(word), nil
}

func (f *Fetcher) fetchRaw(ctx context.Context, address common.Address) (string, error) {
	url := fmt.Sprintf("%s?chainid=%d&module=contract&action=getabi&address=%s&apikey=%s",
		f.baseURL, f.chainID, address.Hex(), f.apiKey)

	f.log.Debug("fetching ABI", "chain_id", f.chainID, "address", address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrABIUnavailable, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetching ABI for %s: %v", ErrABIUnavailable, address, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading explorer response: %v", ErrABIUnavailable, err)
	}

	var result struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Result  string `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: parsing explorer response: %v", ErrABIUnavailable, err)
	}
	if result.Status != "1" {
		return "", fmt.Errorf("%w: %s: explorer: %s", ErrABIUnavailable, address, firstNonEmpty(result.Result, result.Message))
	}
	return result.Result, nil
}

func declaresImplementation(abi *ContractABI) bool {
	for _, e := range abi.Entries {
		if e.Type == "function" && e.Name == "implementation" && len(e.Inputs) == 0 {
			return true
		}
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
