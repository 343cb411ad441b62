// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pushconn

import "fmt"

// State is the lifecycle state of a Manager's connection.
type State int32

const (
	// Disconnected: no connection exists. Either waiting for the
	// reconnect timer or stopped for good after Close.
	Disconnected State = iota

	// Connecting: a dial is in flight.
	Connecting

	// Open: a connection is established and frames are being read.
	Open

	// Closing: Close has been called and teardown is in progress.
	Closing
)

func (state State) String() string {
	switch state {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closing:
		return "closing"
	default:
		return fmt.Sprintf("State(%d)", int32(state))
	}
}

// transitions lists the legal successors of each state.
var transitions = map[State][]State{
	Disconnected: {Connecting, Closing},
	Connecting:   {Open, Disconnected, Closing},
	Open:         {Disconnected, Closing},
	Closing:      {Disconnected},
}

// CanTransition reports whether the state machine allows moving from
// one state to another.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
