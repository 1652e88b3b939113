// Package locator resolves Unix timestamps to block heights by binary
// searching the chain's monotonic height-to-timestamp relationship.
package locator

import (
	"context"
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when the target timestamp falls outside the
// timestamps covered by the search window.
var ErrOutOfRange = errors.New("timestamp out of chain range")

// Bound selects which side of the target timestamp a search resolves to.
type Bound int

const (
	// AtOrBefore returns the highest block whose timestamp is <= target.
	AtOrBefore Bound = iota
	// AtOrAfter returns the lowest block whose timestamp is >= target.
	AtOrAfter
)

func (b Bound) String() string {
	if b == AtOrAfter {
		return "at-or-after"
	}
	return "at-or-before"
}

// BlockRef is an immutable snapshot of a block header: its height and its
// timestamp in Unix epoch seconds.
type BlockRef struct {
	Height uint64
	Time   uint64
}

// HeaderSource is the read capability the locator needs from a chain client.
type HeaderSource interface {
	// HeaderByHeight returns the header snapshot at the given height.
	HeaderByHeight(ctx context.Context, height uint64) (BlockRef, error)
	// CurrentHeight returns the head block height.
	CurrentHeight(ctx context.Context) (uint64, error)
}

// Window bounds a search to the inclusive height range [Low, High].
type Window struct {
	Low  uint64
	High uint64
}

// Locator finds blocks by timestamp against a HeaderSource.
type Locator struct {
	headers HeaderSource
}

// New creates a Locator reading headers from src.
func New(src HeaderSource) *Locator {
	return &Locator{headers: src}
}

// Locate returns the height of the tightest block on the requested side of
// target. With win == nil the search covers [0, current head]. The target
// must lie within the timestamps of the window's boundary blocks; otherwise
// ErrOutOfRange is returned.
//
// Blocks sharing a timestamp resolve deterministically: AtOrBefore picks the
// highest qualifying height, AtOrAfter the lowest. Header reads are O(log n)
// in the window size and each failed read propagates unretried.
func (l *Locator) Locate(ctx context.Context, target uint64, bound Bound, win *Window) (uint64, error) {
	lo, hi, err := l.resolveWindow(ctx, win)
	if err != nil {
		return 0, err
	}

	// Within one search every height is read at most once.
	seen := make(map[uint64]BlockRef)
	at := func(h uint64) (BlockRef, error) {
		if ref, ok := seen[h]; ok {
			return ref, nil
		}
		ref, err := l.headers.HeaderByHeight(ctx, h)
		if err != nil {
			return BlockRef{}, fmt.Errorf("reading header %d: %w", h, err)
		}
		seen[h] = ref
		return ref, nil
	}

	first, err := at(lo)
	if err != nil {
		return 0, err
	}
	last, err := at(hi)
	if err != nil {
		return 0, err
	}
	if target < first.Time || target > last.Time {
		return 0, fmt.Errorf("%w: timestamp %d outside window [%d, %d] covering [%d, %d]",
			ErrOutOfRange, target, lo, hi, first.Time, last.Time)
	}

	switch bound {
	case AtOrAfter:
		// Lowest height with Time >= target.
		for lo < hi {
			mid := lo + (hi-lo)/2
			ref, err := at(mid)
			if err != nil {
				return 0, err
			}
			if ref.Time >= target {
				hi = mid
			} else {
				lo = mid + 1
			}
		}
	default:
		// Highest height with Time <= target.
		for lo < hi {
			mid := lo + (hi-lo+1)/2
			ref, err := at(mid)
			if err != nil {
				return 0, err
			}
			if ref.Time <= target {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
	}
	return lo, nil
}

func (l *Locator) resolveWindow(ctx context.Context, win *Window) (uint64, uint64, error) {
	if win != nil {
		if win.Low > win.High {
			return 0, 0, fmt.Errorf("%w: window low %d above high %d", ErrOutOfRange, win.Low, win.High)
		}
		return win.Low, win.High, nil
	}
	head, err := l.headers.CurrentHeight(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("reading head height: %w", err)
	}
	return 0, head, nil
}
