package klf

import (
	"fmt"
	"slices"
	"strings"
)

// Command is a 16-bit gateway command code.
type Command uint16

// Kind classifies a command by its role on the wire.
type Kind int

const (
	KindUnknown Kind = iota
	KindRequest      // sent by the client, ends in REQ
	KindConfirm      // direct reply to a request, ends in CFM
	KindNotify       // unsolicited event, ends in NTF
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindConfirm:
		return "confirm"
	case KindNotify:
		return "notify"
	default:
		return "unknown"
	}
}

// Lookup tables derived once from commandNames.
var (
	commandsByName map[string]Command
	commandKinds   map[Command]Kind
	confirmations  map[Command]Command
)

func init() {
	commandsByName = make(map[string]Command, len(commandNames))
	commandKinds = make(map[Command]Kind, len(commandNames))
	for cmd, name := range commandNames {
		commandsByName[name] = cmd
		switch {
		case strings.HasSuffix(name, "_REQ"):
			commandKinds[cmd] = KindRequest
		case strings.HasSuffix(name, "_CFM"):
			commandKinds[cmd] = KindConfirm
		case strings.HasSuffix(name, "_NTF"):
			commandKinds[cmd] = KindNotify
		}
	}

	confirmations = make(map[Command]Command)
	for cmd, name := range commandNames {
		if commandKinds[cmd] != KindRequest {
			continue
		}
		if cfm, ok := commandsByName[strings.TrimSuffix(name, "_REQ")+"_CFM"]; ok {
			confirmations[cmd] = cfm
		}
	}
}

// LookupName returns the protocol name of cmd.
func LookupName(cmd Command) (string, bool) {
	name, ok := commandNames[cmd]
	return name, ok
}

// LookupCommand returns the command with the given protocol name
// (e.g. "GW_GET_STATE_REQ").
func LookupCommand(name string) (Command, bool) {
	cmd, ok := commandsByName[name]
	return cmd, ok
}

// String returns the protocol name, or UNKNOWN_0xNNNN for codes outside the
// command table.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_0x%04X", uint16(c))
}

// Known reports whether c is in the command table.
func (c Command) Known() bool {
	_, ok := commandNames[c]
	return ok
}

// Kind returns the role of c.
func (c Command) Kind() Kind {
	return commandKinds[c]
}

// Confirmation returns the confirmation expected in reply to the request c.
func (c Command) Confirmation() (Command, bool) {
	cfm, ok := confirmations[c]
	return cfm, ok
}

// Commands returns every command of the given kind, ordered by code.
func Commands(kind Kind) []Command {
	var out []Command
	for cmd := range commandNames {
		if commandKinds[cmd] == kind {
			out = append(out, cmd)
		}
	}
	slices.Sort(out)
	return out
}
