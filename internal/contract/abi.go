// Package contract layers date-aware event helpers on top of an EVM chain
// client: ABI retrieval with proxy resolution, event signature listing, and
// event queries over calendar date ranges.
package contract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// ABIParam is a parameter in an ABI entry. Components is populated for tuple
// types and drives canonical signature expansion.
type ABIParam struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Indexed    bool       `json:"indexed,omitempty"`
	Components []ABIParam `json:"components,omitempty"`
}

// ABIEntry is one ABI entry (function, event, constructor, ...).
type ABIEntry struct {
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Inputs          []ABIParam `json:"inputs"`
	Outputs         []ABIParam `json:"outputs"`
	StateMutability string     `json:"stateMutability"`
}

// ContractABI holds a contract's ABI both as raw JSON (fed to go-ethereum's
// decoder) and as parsed entries in declaration order.
type ContractABI struct {
	Raw     json.RawMessage
	Entries []ABIEntry
}

// ParseABI parses a raw ABI JSON array.
func ParseABI(data []byte) (*ContractABI, error) {
	var entries []ABIEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid ABI JSON: expected an array of function/event definitions: %w", err)
	}
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return &ContractABI{Raw: raw, Entries: entries}, nil
}

// EventDef describes one event declared in an ABI.
type EventDef struct {
	Name   string
	Inputs []ABIParam
	// Signature is the canonical form, e.g. "Transfer(address,address,uint256)".
	Signature string
	// Topic is keccak256(Signature), the log's topic0.
	Topic common.Hash
}

// ArgCount returns the number of declared event arguments.
func (d EventDef) ArgCount() int { return len(d.Inputs) }

// Describe returns a human-readable signature with argument names and
// indexed markers, e.g. "Transfer(indexed address from, indexed address to,
// uint256 value)".
func (d EventDef) Describe() string {
	parts := make([]string, 0, len(d.Inputs))
	for _, in := range d.Inputs {
		p := canonicalType(in)
		if in.Name != "" {
			p += " " + in.Name
		}
		if in.Indexed {
			p = "indexed " + p
		}
		parts = append(parts, p)
	}
	return d.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Events returns the events declared in the ABI, in declaration order.
func (c *ContractABI) Events() []EventDef {
	var defs []EventDef
	for _, e := range c.Entries {
		if e.Type != "event" || e.Name == "" {
			continue
		}
		sig := eventSignature(e)
		defs = append(defs, EventDef{
			Name:      e.Name,
			Inputs:    e.Inputs,
			Signature: sig,
			Topic:     eventTopic(sig),
		})
	}
	return defs
}

// EventByName returns the first declared event with the given name.
// Matching is case-sensitive; overloads resolve to the earliest declaration.
func (c *ContractABI) EventByName(name string) (EventDef, bool) {
	for _, d := range c.Events() {
		if d.Name == name {
			return d, true
		}
	}
	return EventDef{}, false
}

func eventSignature(e ABIEntry) string {
	types := make([]string, 0, len(e.Inputs))
	for _, in := range e.Inputs {
		types = append(types, canonicalType(in))
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// canonicalType renders a parameter type the way the ABI spec hashes it,
// expanding tuples into their component types.
func canonicalType(p ABIParam) string {
	if !strings.HasPrefix(p.Type, "tuple") {
		return p.Type
	}
	inner := make([]string, 0, len(p.Components))
	for _, c := range p.Components {
		inner = append(inner, canonicalType(c))
	}
	// Preserve any array suffix: tuple[], tuple[2], ...
	return "(" + strings.Join(inner, ",") + ")" + strings.TrimPrefix(p.Type, "tuple")
}

func eventTopic(sig string) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return common.BytesToHash(h.Sum(nil))
}
