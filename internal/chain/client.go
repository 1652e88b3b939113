package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/ethereal-go/ethereal/internal/locator"
)

// ErrRead is wrapped around every failed chain read so callers can classify
// transport failures without inspecting provider-specific errors.
var ErrRead = errors.New("chain read failed")

// ErrNoEndpoints is returned when a client is created without RPC endpoints.
var ErrNoEndpoints = errors.New("no RPC endpoints configured")

// Number of consecutive failures before rotating to the next endpoint.
const defaultMaxFails = 3

// Client is a thin wrapper over go-ethereum's ethclient that adds
// multi-endpoint failover: after maxFails consecutive read failures it
// rotates to the next configured endpoint. Failed calls are reported to the
// caller unretried; only the endpoint selection changes.
type Client struct {
	mu        sync.Mutex
	endpoints []string
	conns     []*ethclient.Client
	current   int
	fails     int
	maxFails  int
	log       *slog.Logger
}

// NewClient creates a Client over one or more RPC endpoints. Connections are
// dialed lazily on first use.
func NewClient(log *slog.Logger, endpoints ...string) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		endpoints: endpoints,
		conns:     make([]*ethclient.Client, len(endpoints)),
		maxFails:  defaultMaxFails,
		log:       log,
	}, nil
}

// Endpoint returns the currently selected RPC endpoint URL.
func (c *Client) Endpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endpoints[c.current]
}

// Close releases all dialed connections.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, conn := range c.conns {
		if conn != nil {
			conn.Close()
			c.conns[i] = nil
		}
	}
}

// HeaderByHeight returns the header snapshot at the given height.
func (c *Client) HeaderByHeight(ctx context.Context, height uint64) (locator.BlockRef, error) {
	var ref locator.BlockRef
	err := c.do(ctx, "eth_getBlockByNumber", func(conn *ethclient.Client) error {
		header, err := conn.HeaderByNumber(ctx, new(big.Int).SetUint64(height))
		if err != nil {
			return err
		}
		ref = locator.BlockRef{Height: header.Number.Uint64(), Time: header.Time}
		return nil
	})
	return ref, err
}

// CurrentHeight returns the head block height.
func (c *Client) CurrentHeight(ctx context.Context) (uint64, error) {
	var head uint64
	err := c.do(ctx, "eth_blockNumber", func(conn *ethclient.Client) error {
		n, err := conn.BlockNumber(ctx)
		if err != nil {
			return err
		}
		head = n
		return nil
	})
	return head, err
}

// FilterLogs runs eth_getLogs with the given filter query.
func (c *Client) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	err := c.do(ctx, "eth_getLogs", func(conn *ethclient.Client) error {
		out, err := conn.FilterLogs(ctx, q)
		if err != nil {
			return err
		}
		logs = out
		return nil
	})
	return logs, err
}

// CallContract executes a read-only contract call against the latest block.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	var out []byte
	err := c.do(ctx, "eth_call", func(conn *ethclient.Client) error {
		res, err := conn.CallContract(ctx, msg, nil)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// StorageAt reads a raw storage slot of a contract at the latest block.
func (c *Client) StorageAt(ctx context.Context, addr common.Address, slot common.Hash) ([]byte, error) {
	var out []byte
	err := c.do(ctx, "eth_getStorageAt", func(conn *ethclient.Client) error {
		res, err := conn.StorageAt(ctx, addr, slot, nil)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// ChainID returns the chain ID reported by the endpoint.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var id *big.Int
	err := c.do(ctx, "eth_chainId", func(conn *ethclient.Client) error {
		n, err := conn.ChainID(ctx)
		if err != nil {
			return err
		}
		id = n
		return nil
	})
	return id, err
}

// do runs fn against the current endpoint, tracking consecutive failures and
// rotating endpoints once maxFails is reached. The failed call itself is not
// retried.
func (c *Client) do(ctx context.Context, method string, fn func(*ethclient.Client) error) error {
	conn, url, err := c.conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: dialing %s: %w", ErrRead, url, err)
	}

	if err := fn(conn); err != nil {
		c.reportFailure(method, url, err)
		return fmt.Errorf("%w: %s: %w", ErrRead, method, err)
	}

	c.mu.Lock()
	c.fails = 0
	c.mu.Unlock()
	return nil
}

func (c *Client) conn(ctx context.Context) (*ethclient.Client, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	url := c.endpoints[c.current]
	if c.conns[c.current] == nil {
		conn, err := ethclient.DialContext(ctx, url)
		if err != nil {
			return nil, url, err
		}
		c.conns[c.current] = conn
	}
	return c.conns[c.current], url, nil
}

func (c *Client) reportFailure(method, url string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fails++
	c.log.Debug("chain read failed", "method", method, "endpoint", url, "fails", c.fails, "err", err)
	if c.fails < c.maxFails || len(c.endpoints) < 2 {
		return
	}

	c.current = (c.current + 1) % len(c.endpoints)
	c.fails = 0
	c.log.Info("rotating RPC endpoint", "endpoint", c.endpoints[c.current])
}
