// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tomnagengast/tomterm/internal/session"
)

// SnapshotMsg delivers a new session state to the Update loop.
type SnapshotMsg session.Snapshot

// feed carries snapshots from the session to the Update loop. It holds at
// most one pending snapshot and replaces it when a newer one arrives.
type feed struct {
	ch   chan session.Snapshot
	done chan struct{}
	once sync.Once
}

func newFeed() *feed {
	return &feed{ch: make(chan session.Snapshot, 1), done: make(chan struct{})}
}

// close releases any pending wait.
func (f *feed) close() {
	f.once.Do(func() { close(f.done) })
}

// push is called from the session's publisher, which is serialized.
func (f *feed) push(s session.Snapshot) {
	for {
		select {
		case f.ch <- s:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// wait returns a command that blocks until the next snapshot.
func (f *feed) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-f.ch:
			return SnapshotMsg(s)
		case <-f.done:
			return nil
		}
	}
}
