// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/qaboard/lib/pushconn"
	"github.com/bureau-foundation/qaboard/lib/questionevent"
)

// pushEventMsg reports an event that arrived over the push channel and
// changed the collection.
type pushEventMsg struct {
	event questionevent.Event
}

// connectionStateMsg reports that the push connection state changed.
// Sends are asynchronous and may arrive out of order, so the model
// reads the current state from its source instead of carrying it here.
type connectionStateMsg struct{}

// Notifier forwards session callbacks into a running program. Its
// methods match the livesync.Config callback signatures, so a session
// can be opened before the program exists. Calls made before
// SetProgram are dropped.
type Notifier struct {
	program atomic.Pointer[tea.Program]
}

// NewNotifier returns a notifier with no program attached.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// SetProgram sets the program that receives notifications.
func (notifier *Notifier) SetProgram(program *tea.Program) {
	notifier.program.Store(program)
}

// PushEvent is the livesync OnPushEvent callback.
func (notifier *Notifier) PushEvent(event questionevent.Event) {
	notifier.send(pushEventMsg{event: event})
}

// ConnectionState is the livesync OnConnectionState callback. It runs
// with the connection manager's lock held and must not block.
func (notifier *Notifier) ConnectionState(pushconn.State) {
	notifier.send(connectionStateMsg{})
}

func (notifier *Notifier) send(message tea.Msg) {
	program := notifier.program.Load()
	if program == nil {
		return
	}
	go program.Send(message)
}
