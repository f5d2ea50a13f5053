// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package sshserver

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestEnsureHostKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "host_ed25519")

	first, err := EnsureHostKey(path)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := EnsureHostKey(path)
	require.NoError(t, err)
	assert.Equal(t, first.PublicKey().Marshal(), second.PublicKey().Marshal())

	_, err = EnsureHostKey(" ")
	assert.Error(t, err)
}

func TestColorProfile(t *testing.T) {
	tests := map[string]termenv.Profile{
		"xterm-256color": termenv.ANSI256,
		"xterm-kitty":    termenv.TrueColor,
		"xterm":          termenv.ANSI,
		"dumb":           termenv.Ascii,
		"":               termenv.Ascii,
	}
	for term, want := range tests {
		assert.Equal(t, want, colorProfile(term), term)
	}
}

// lockedBuffer collects session output from the ssh client goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := &Server{
		HostKeyPath: filepath.Join(t.TempDir(), "host_key"),
		Listener:    ln,
		Theme:       "dark",
	}
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("ssh server did not stop")
		}
	})
	return ln.Addr().String()
}

func dial(t *testing.T, addr string) *ssh.Client {
	t.Helper()
	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            "visitor",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func eventually(t *testing.T, out *lockedBuffer, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), want)
	}, 5*time.Second, 20*time.Millisecond, "output never contained %q", want)
}

func TestSessionRequiresPTY(t *testing.T) {
	client := dial(t, startServer(t))
	sess, err := client.NewSession()
	require.NoError(t, err)
	defer sess.Close()

	out, _ := sess.CombinedOutput("")
	assert.Equal(t, "pty required\n", string(out))
}

func TestInteractiveSession(t *testing.T) {
	client := dial(t, startServer(t))
	sess, err := client.NewSession()
	require.NoError(t, err)
	defer sess.Close()

	require.NoError(t, sess.RequestPty("xterm-256color", 24, 80, ssh.TerminalModes{}))
	stdin, err := sess.StdinPipe()
	require.NoError(t, err)
	out := &lockedBuffer{}
	sess.Stdout = out
	require.NoError(t, sess.Shell())

	eventually(t, out, "Welcome to tom@sandbox.")

	_, err = io.WriteString(stdin, "ls\r")
	require.NoError(t, err)
	eventually(t, out, "interests.txt")

	_, err = io.WriteString(stdin, "\x03")
	require.NoError(t, err)
	waitErr := make(chan error, 1)
	go func() { waitErr <- sess.Wait() }()
	select {
	case <-waitErr:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end after ctrl+c")
	}
}
