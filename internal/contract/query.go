package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ethereal-go/ethereal/internal/locator"
)

// ErrUnknownEvent is returned when the requested event name is not declared
// in the contract's ABI.
var ErrUnknownEvent = errors.New("event not declared in contract ABI")

// ChainReader is the chain capability the querier needs: header reads for
// date resolution and log filtering for event retrieval.
type ChainReader interface {
	locator.HeaderSource
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// ABISource supplies the (proxy-resolved) ABI for a contract address.
type ABISource interface {
	ABI(ctx context.Context, address common.Address) (*ContractABI, error)
}

// ABIFunc adapts a function to the ABISource interface.
type ABIFunc func(ctx context.Context, address common.Address) (*ContractABI, error)

// ABI implements ABISource.
func (f ABIFunc) ABI(ctx context.Context, address common.Address) (*ContractABI, error) {
	return f(ctx, address)
}

// EventRecord is one decoded event occurrence.
type EventRecord struct {
	Event       string         `json:"event"`
	Signature   string         `json:"signature"`
	Address     common.Address `json:"address"`
	BlockNumber uint64         `json:"blockNumber"`
	TxHash      common.Hash    `json:"transactionHash"`
	LogIndex    uint           `json:"logIndex"`
	Args        map[string]any `json:"args"`
	// EstimatedAt is interpolated from the queried range's boundary block
	// timestamps; only the boundaries are read, not every block.
	EstimatedAt time.Time `json:"estimatedAt"`
}

// Querier answers date-ranged event queries against one chain.
type Querier struct {
	chain ChainReader
	abis  ABISource
	loc   *locator.Locator
	log   *slog.Logger
}

// NewQuerier creates a Querier over the given chain reader and ABI source.
func NewQuerier(chain ChainReader, abis ABISource, log *slog.Logger) *Querier {
	if log == nil {
		log = slog.Default()
	}
	return &Querier{
		chain: chain,
		abis:  abis,
		loc:   locator.New(chain),
		log:   log,
	}
}

// ListEventSignatures returns the canonical signatures of every event the
// contract declares, in ABI declaration order.
func (q *Querier) ListEventSignatures(ctx context.Context, address common.Address) ([]string, error) {
	defs, err := q.Events(ctx, address)
	if err != nil {
		return nil, err
	}
	sigs := make([]string, 0, len(defs))
	for _, d := range defs {
		sigs = append(sigs, d.Signature)
	}
	return sigs, nil
}

// Events returns the contract's declared events in declaration order.
func (q *Querier) Events(ctx context.Context, address common.Address) ([]EventDef, error) {
	abi, err := q.abis.ABI(ctx, address)
	if err != nil {
		return nil, err
	}
	return abi.Events(), nil
}

// BlockByTime resolves a date input (epoch seconds or calendar date) to the
// tightest block height on the requested side.
func (q *Querier) BlockByTime(ctx context.Context, input string, bound locator.Bound) (uint64, error) {
	ts, err := ParseTime(input)
	if err != nil {
		return 0, err
	}
	return q.loc.Locate(ctx, ts, bound, nil)
}

// QueryEvents returns every occurrence of the named event emitted by the
// contract within the inclusive [fromDate, toDate] range, in chain order
// (ascending block, then log index). A range that resolves to no blocks
// yields an empty slice, not an error.
func (q *Querier) QueryEvents(ctx context.Context, address common.Address, event, fromDate, toDate string) ([]EventRecord, error) {
	// Date validation happens before any chain read.
	dr, err := ParseDateRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}

	abi, err := q.abis.ABI(ctx, address)
	if err != nil {
		return nil, err
	}
	def, ok := abi.EventByName(event)
	if !ok {
		return nil, fmt.Errorf("%w: %q on %s", ErrUnknownEvent, event, address)
	}

	fromBlock, err := q.loc.Locate(ctx, dr.From, locator.AtOrAfter, nil)
	if err != nil {
		return nil, err
	}
	toBlock, err := q.loc.Locate(ctx, dr.To, locator.AtOrBefore, nil)
	if err != nil {
		return nil, err
	}
	if fromBlock > toBlock {
		// Both dates fall inside the same inter-block gap.
		return []EventRecord{}, nil
	}

	q.log.Debug("querying events",
		"contract", address, "event", def.Signature,
		"from_block", fromBlock, "to_block", toBlock)

	logs, err := q.fetchLogs(ctx, address, def.Topic, fromBlock, toBlock)
	if err != nil {
		return nil, err
	}

	interp, err := q.timeInterpolator(ctx, fromBlock, toBlock)
	if err != nil {
		return nil, err
	}

	decoder, err := newLogDecoder(abi, def)
	if err != nil {
		return nil, err
	}
	records := make([]EventRecord, 0, len(logs))
	for _, lg := range logs {
		rec, err := decoder.decode(lg)
		if err != nil {
			return nil, fmt.Errorf("decoding %s log at block %d index %d: %w", def.Name, lg.BlockNumber, lg.Index, err)
		}
		rec.EstimatedAt = interp(lg.BlockNumber)
		records = append(records, rec)
	}
	return records, nil
}

// fetchLogs retrieves logs over [from, to], splitting the range into chunks
// and halving the chunk size whenever the provider rejects a window.
func (q *Querier) fetchLogs(ctx context.Context, address common.Address, topic common.Hash, from, to uint64) ([]types.Log, error) {
	chunk := to - from
	if chunk == 0 {
		chunk = 1
	}

	var out []types.Log
	cur := from
	for cur <= to {
		end := min(cur+chunk, to)
		logs, err := q.chain.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(cur),
			ToBlock:   new(big.Int).SetUint64(end),
			Addresses: []common.Address{address},
			Topics:    [][]common.Hash{{topic}},
		})
		if err != nil {
			if !retriableRangeError(err) {
				return nil, err
			}
			chunk /= 2
			if chunk == 0 {
				return nil, fmt.Errorf("fetching logs %d-%d: chunk size collapsed: %w", cur, end, err)
			}
			q.log.Debug("provider rejected log range, halving chunk", "chunk", chunk, "err", err)
			continue
		}
		out = append(out, logs...)
		cur = end + 1
	}
	return out, nil
}

// timeInterpolator builds a linear block-number-to-time estimate from the
// range's boundary block timestamps.
func (q *Querier) timeInterpolator(ctx context.Context, fromBlock, toBlock uint64) (func(uint64) time.Time, error) {
	first, err := q.chain.HeaderByHeight(ctx, fromBlock)
	if err != nil {
		return nil, fmt.Errorf("reading header %d: %w", fromBlock, err)
	}
	last, err := q.chain.HeaderByHeight(ctx, toBlock)
	if err != nil {
		return nil, fmt.Errorf("reading header %d: %w", toBlock, err)
	}
	return func(block uint64) time.Time {
		ts := first.Time
		if toBlock > fromBlock && block >= fromBlock {
			ts += (block - fromBlock) * (last.Time - first.Time) / (toBlock - fromBlock)
		}
		return time.Unix(int64(ts), 0).UTC()
	}, nil
}

// Providers reject over-wide eth_getLogs windows with assorted messages;
// anything else is a genuine read failure and propagates.
func retriableRangeError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"limit", "range", "timeout", "too many", "response size"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

// logDecoder decodes raw logs of one event through go-ethereum's ABI codec.
type logDecoder struct {
	def     EventDef
	inputs  ethabi.Arguments
	indexed ethabi.Arguments
}

func newLogDecoder(abi *ContractABI, def EventDef) (*logDecoder, error) {
	parsed, err := ethabi.JSON(bytes.NewReader(abi.Raw))
	if err != nil {
		return nil, fmt.Errorf("parsing ABI for decoding: %w", err)
	}
	for _, ev := range parsed.Events {
		if ev.ID != def.Topic {
			continue
		}
		var indexed ethabi.Arguments
		for _, arg := range ev.Inputs {
			if arg.Indexed {
				indexed = append(indexed, arg)
			}
		}
		return &logDecoder{def: def, inputs: ev.Inputs, indexed: indexed}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, def.Name)
}

func (d *logDecoder) decode(lg types.Log) (EventRecord, error) {
	args := make(map[string]any)
	if len(lg.Data) > 0 {
		if err := d.inputs.UnpackIntoMap(args, lg.Data); err != nil {
			return EventRecord{}, err
		}
	}
	if len(d.indexed) > 0 {
		if len(lg.Topics) != len(d.indexed)+1 {
			return EventRecord{}, fmt.Errorf("log has %d topics, event declares %d indexed arguments", len(lg.Topics), len(d.indexed))
		}
		if err := ethabi.ParseTopicsIntoMap(args, d.indexed, lg.Topics[1:]); err != nil {
			return EventRecord{}, err
		}
	}
	return EventRecord{
		Event:       d.def.Name,
		Signature:   d.def.Signature,
		Address:     lg.Address,
		BlockNumber: lg.BlockNumber,
		TxHash:      lg.TxHash,
		LogIndex:    lg.Index,
		Args:        args,
	}, nil
}
