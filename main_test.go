// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "tomterm "+Version))
}

func TestRSSCommandStdout(t *testing.T) {
	out, err := runRoot(t, "rss")
	require.NoError(t, err)
	assert.Contains(t, out, "<rss version=\"2.0\"")
	assert.Contains(t, out, "building-this-site")
}

func TestRSSCommandFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "rss.xml")
	out, err := runRoot(t, "rss", "-o", path, "--site-url", "https://example.test")
	require.NoError(t, err)
	assert.Contains(t, out, "RSS feed written to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://example.test/notes/building-this-site")
}

func TestNotesCommand(t *testing.T) {
	out, err := runRoot(t, "notes")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-11-26")
	assert.Contains(t, out, "building-this-site")

	_, err = runRoot(t, "notes", "no-such-note")
	assert.Error(t, err)
}

func TestNotesCommandRaw(t *testing.T) {
	out, err := runRoot(t, "notes", "building-this-site", "--raw")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))
	assert.NotContains(t, out, "\x1b[")
}

func TestConfigInitAndPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := runRoot(t, "-c", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	_, err = runRoot(t, "-c", path, "config", "init")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	_, err = runRoot(t, "-c", path, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = runRoot(t, "-c", path, "config", "init", "--force")
	require.NoError(t, err)

	out, err = runRoot(t, "-c", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[server]")
}

func TestSourceFilesCarryLicenseHeader(t *testing.T) {
	const (
		copyright = "// Copyright (c) 2025 Tom Nagengast"
		spdx      = "// SPDX-License-Identifier: AGPL-3.0-or-later"
	)
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && (strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		head := string(data)
		if len(head) > 512 {
			head = head[:512]
		}
		assert.Contains(t, head, copyright, path)
		assert.Contains(t, head, spdx, path)
		return nil
	})
	require.NoError(t, err)
}
