package cmd

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereal-go/ethereal/internal/locator"
)

func TestParseBound(t *testing.T) {
	b, err := parseBound("before")
	require.NoError(t, err)
	assert.Equal(t, locator.AtOrBefore, b)

	b, err = parseBound("after")
	require.NoError(t, err)
	assert.Equal(t, locator.AtOrAfter, b)

	b, err = parseBound("")
	require.NoError(t, err)
	assert.Equal(t, locator.AtOrBefore, b, "empty flag defaults to before")

	_, err = parseBound("nearest")
	assert.Error(t, err)
}

func TestParseAddr(t *testing.T) {
	addr, err := parseAddr("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	require.NoError(t, err)
	assert.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", addr.Hex())

	_, err = parseAddr("not-an-address")
	assert.Error(t, err)

	_, err = parseAddr("0x1234")
	assert.Error(t, err, "too-short hex is not an address")
}

func TestFormatEventArg(t *testing.T) {
	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)

	eventsDecimals = -1
	assert.Equal(t, "1500000000000000000", formatEventArg(wei))

	eventsDecimals = 18
	defer func() { eventsDecimals = -1 }()
	assert.Equal(t, "1.5", formatEventArg(wei))
	assert.Equal(t, "hello", formatEventArg("hello"), "--decimals only touches integer amounts")
}

func TestSortedArgNames(t *testing.T) {
	args := map[string]any{"value": 1, "from": 2, "to": 3}
	assert.Equal(t, []string{"from", "to", "value"}, sortedArgNames(args))
	assert.Empty(t, sortedArgNames(nil))
}
