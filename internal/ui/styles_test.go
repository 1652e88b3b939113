package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessContainsPrefixAndMessage(t *testing.T) {
	result := Success("done")
	assert.Contains(t, result, "✓")
	assert.Contains(t, result, "done")
}

func TestWarnContainsPrefixAndMessage(t *testing.T) {
	result := Warn("careful")
	assert.Contains(t, result, "⚠")
	assert.Contains(t, result, "careful")
}

func TestErrContainsPrefixAndMessage(t *testing.T) {
	result := Err("failed")
	assert.Contains(t, result, "✗")
	assert.Contains(t, result, "failed")
}

func TestInfoDifferentFromHint(t *testing.T) {
	info := Info("message")
	hint := Hint("message")
	assert.NotEqual(t, info, hint, "Info and Hint should produce different output for the same message")
}

func TestTruncateAddrShortAddress(t *testing.T) {
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
}

func TestTruncateAddrExactBoundary(t *testing.T) {
	assert.Equal(t, "0x12345678", TruncateAddr("0x12345678"))
}

func TestTruncateAddrLongAddress(t *testing.T) {
	addr := "0x1234567890abcdef1234567890abcdef12345678"
	result := TruncateAddr(addr)
	assert.Equal(t, "0x1234…5678", result)
	assert.Less(t, len(result), len(addr))
}

func TestTruncateAddrEmptyString(t *testing.T) {
	assert.Equal(t, "", TruncateAddr(""))
}

func TestAllFormattersReturnNonEmpty(t *testing.T) {
	formatters := map[string]func(string) string{
		"Success":   Success,
		"Warn":      Warn,
		"Err":       Err,
		"Info":      Info,
		"Hint":      Hint,
		"Addr":      Addr,
		"Val":       Val,
		"Meta":      Meta,
		"ChainName": ChainName,
		"EventName": EventName,
	}
	for name, fn := range formatters {
		t.Run(name, func(t *testing.T) {
			result := fn("test")
			assert.NotEmpty(t, result, "%s should return non-empty string", name)
			assert.Contains(t, result, "test", "%s should contain the input message", name)
		})
	}
}

func TestBannerNonEmpty(t *testing.T) {
	assert.NotEmpty(t, Banner())
}
