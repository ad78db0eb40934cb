package domain

import (
	"fmt"
	"strconv"
)

// Side is the faction a per-player attribute belongs to. The key/value store
// keeps one row per (player, key, side), so the same attribute can hold a
// different value on each side.
type Side int8

const (
	SideCivilian Side = 0
	SidePolice   Side = 1
	SideUNCDA    Side = 2
)

// SideLabel maps a side to its display name.
var SideLabel = map[Side]string{
	SideCivilian: "Ziv",
	SidePolice:   "Cop",
	SideUNCDA:    "UNCDA",
}

// AllSides lists the valid sides in display order.
var AllSides = []Side{SideCivilian, SidePolice, SideUNCDA}

// ParseSide converts a path segment into a Side, rejecting anything outside
// the fixed enumeration.
func ParseSide(s string) (Side, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 2 {
		return 0, ErrValidation(fmt.Sprintf("invalid side %q", s))
	}
	return Side(n), nil
}

func (s Side) Label() string { return SideLabel[s] }

// KVFields is the fixed vocabulary of editable per-side player attributes.
// Order matters: forms and the permission matrix render in this order.
var KVFields = []string{
	"name", "level", "pt", "cash", "bank",
	"address", "town", "birthday", "birthlocation",
	"eyecolor", "height",
}

// IsKVField reports whether name is an editable player attribute.
func IsKVField(name string) bool {
	for _, f := range KVFields {
		if f == name {
			return true
		}
	}
	return false
}

// KeyValue is one row of the sparse player attribute store, keyed by
// (PlayerID, Key, Side).
type KeyValue struct {
	PlayerID string
	Key      string
	Side     Side
	Value    string
	Type     string
}

// PlayerSummary is one entry in the player list: a pid with its coalesced
// display name.
type PlayerSummary struct {
	PlayerID string
	Name     string
}

// PlayerInfo is the per-side attribute row pivoted out of the key/value
// store. Missing attributes stay empty strings.
type PlayerInfo struct {
	Side   Side
	Fields map[string]string
}

// Field returns the value for an attribute, empty when unset.
func (p PlayerInfo) Field(name string) string {
	if p.Fields == nil {
		return ""
	}
	return p.Fields[name]
}

// PlayerGear holds the per-side serialized gear and license blobs. They are
// display-only; the console never edits them.
type PlayerGear struct {
	Side     Side
	Licenses string
	Gear     string
}
