package ui

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// FormatUnits renders an integer token amount scaled down by decimals,
// e.g. FormatUnits(1500000000000000000, 18) == "1.5".
func FormatUnits(v *big.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}

// FormatArg renders a decoded event argument for display.
func FormatArg(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case common.Address:
		return val.Hex()
	case common.Hash:
		return val.Hex()
	case *big.Int:
		return val.String()
	case []byte:
		return hexutil.Encode(val)
	case [32]byte:
		return hexutil.Encode(val[:])
	case bool:
		return fmt.Sprintf("%t", val)
	case string:
		return val
	case []common.Address:
		out := ""
		for i, a := range val {
			if i > 0 {
				out += ", "
			}
			out += a.Hex()
		}
		return "[" + out + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FormatTimestamp renders a block timestamp in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}
