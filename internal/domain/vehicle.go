package domain

import (
	"strings"
	"time"
)

// Vehicle is one vehicles row. Side here is the faction string stored by the
// game server, not the kvstore side enum.
type Vehicle struct {
	ID         int64
	Side       string
	ClassName  string
	Type       string
	PlayerID   string
	Alive      bool
	Active     bool
	Sold       bool
	Locked     bool
	Color      int
	Trunk      string
	Chip       bool
	BoughtAt   time.Time
	ModifiedAt time.Time
}

// VehicleUpdate holds the editable vehicle fields from the edit form.
type VehicleUpdate struct {
	Alive  bool
	Active bool
	Sold   bool
	Locked bool
	Color  int
	Trunk  string
}

// QuickAction is a named predefined vehicle mutation.
type QuickAction string

const (
	QARestore QuickAction = "restore"
	QALock    QuickAction = "lock"
	QAUnlock  QuickAction = "unlock"
	QASell    QuickAction = "sell"
	QAUnsell  QuickAction = "unsell"
	QAKill    QuickAction = "kill"
	QARevive  QuickAction = "revive"
)

// QuickActionEffect describes which flags an action sets. Nil pointers leave
// the column untouched.
type QuickActionEffect struct {
	Alive  *bool
	Active *bool
	Sold   *bool
	Locked *bool
}

var quickActionEffects = map[QuickAction]QuickActionEffect{
	QARestore: {Alive: ptr(true), Active: ptr(true), Sold: ptr(false)},
	QALock:    {Locked: ptr(true)},
	QAUnlock:  {Locked: ptr(false)},
	QASell:    {Sold: ptr(true)},
	QAUnsell:  {Sold: ptr(false)},
	QAKill:    {Alive: ptr(false)},
	QARevive:  {Alive: ptr(true)},
}

// ParseQuickAction validates an action name and returns its column effect.
// Unknown names are rejected, never coerced.
func ParseQuickAction(s string) (QuickAction, QuickActionEffect, bool) {
	effect, ok := quickActionEffects[QuickAction(s)]
	if !ok {
		return "", QuickActionEffect{}, false
	}
	return QuickAction(s), effect, true
}

func ptr(b bool) *bool { return &b }

// ParseCheckbox interprets the loose truthy forms browsers submit for
// checkbox inputs.
func ParseCheckbox(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
