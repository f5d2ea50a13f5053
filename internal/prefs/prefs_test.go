// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package prefs

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestThemeRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	assert.Equal(t, "dark", s.Theme(ctx, "dark"))
	require.NoError(t, s.SetTheme(ctx, "light"))
	assert.Equal(t, "light", s.Theme(ctx, "dark"))
	require.NoError(t, s.SetTheme(ctx, "dark"))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, "dark", reopened.Theme(ctx, "light"))
}

func TestGetMissing(t *testing.T) {
	s, _ := openTemp(t)
	v, ok, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	for _, line := range []string{"ls", "ls", "", "cat about.txt", "tom"} {
		require.NoError(t, s.AddHistory(ctx, line))
	}
	lines, err := s.History(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "cat about.txt", "tom"}, lines)

	lines, err = s.History(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat about.txt", "tom"}, lines)
}

func TestHistoryTrimmed(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	for i := range MaxHistory + 5 {
		require.NoError(t, s.AddHistory(ctx, fmt.Sprintf("cmd %d", i)))
	}
	lines, err := s.History(ctx, MaxHistory+10)
	require.NoError(t, err)
	require.Len(t, lines, MaxHistory)
	assert.Equal(t, "cmd 5", lines[0])
}
