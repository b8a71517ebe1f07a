package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/jda/classfile"
	"github.com/dhamidi/jda/classfile/classfiletest"
	"github.com/dhamidi/jda/settings"
	"github.com/dhamidi/jda/textbuf"
)

func writeClasses(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	outer := classfiletest.New("p/Outer")
	outer.Field(classfile.AccPrivate, "n", "I")
	outer.Inner("p/Outer$In", "p/Outer", "In", classfile.AccPublic|classfile.AccStatic)
	inner := classfiletest.New("p/Outer$In")
	other := classfiletest.New("p/Other")

	require.NoError(t, os.MkdirAll(filepath.Join(root, "p"), 0o755))
	for name, b := range map[string]*classfiletest.Builder{"Outer": outer, "Outer$In": inner, "Other": other} {
		require.NoError(t, os.WriteFile(filepath.Join(root, "p", name+".class"), b.Bytes(), 0o644))
	}
	return root
}

func run(t *testing.T, reg *settings.Registry, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(reg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	root := writeClasses(t)
	out, err := run(t, settings.New(), "list", root)
	require.NoError(t, err)
	assert.Equal(t, "p/Other\np/Outer\np/Outer$In\n", out)
}

func TestRenderCommand(t *testing.T) {
	root := writeClasses(t)
	out, err := run(t, settings.New(), "render", root, "p/Outer")
	require.NoError(t, err)

	nl := textbuf.LineSeparator
	assert.True(t, strings.HasPrefix(out, "public class p/Outer {"+nl))
	assert.Contains(t, out, "     private int n;")
	assert.Contains(t, out, "     public class p/Outer$In {")
}

func TestRenderCommandKeepsOrder(t *testing.T) {
	root := writeClasses(t)
	out, err := run(t, settings.New(), "render", root, "p/Other", "p/Outer", "--jobs", "4")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "class p/Other {"), strings.Index(out, "class p/Outer {"))
}

func TestRenderCommandAll(t *testing.T) {
	root := writeClasses(t)
	path := filepath.Join(t.TempDir(), "listing.txt")
	_, err := run(t, settings.New(), "render", root, "--all", "--out", path,
		"--set", "decompile-inner-classes=false")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "class p/Outer$In {"), "inner class is not expanded inside its outer class")
	assert.Equal(t, 3, strings.Count(string(data), "public class"))
}

func TestRenderCommandErrors(t *testing.T) {
	root := writeClasses(t)

	_, err := run(t, settings.New(), "render", root)
	assert.Error(t, err)

	_, err = run(t, settings.New(), "render", root, "p/Missing")
	assert.ErrorContains(t, err, "p/Missing")

	_, err = run(t, settings.New(), "render", root, "p/Outer", "--set", "nope=true")
	assert.ErrorIs(t, err, settings.ErrUnknownToggle)
}

func TestSettingsCommandReadsEnvironment(t *testing.T) {
	t.Setenv(settingsEnv, "debug-helpers=true, decompile-inner-classes=false")
	reg := settings.New()
	out, err := run(t, reg, "settings")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Regexp(t, `^debug-helpers\s+Debug Helpers\s+false\s+true$`, lines[1])
	assert.Regexp(t, `^decompile-inner-classes\s+Decompile Inner Classes\s+true\s+false$`, lines[4])
}

func TestBadEnvironmentIsReported(t *testing.T) {
	t.Setenv(settingsEnv, "debug-helpers=maybe")
	_, err := run(t, settings.New(), "settings")
	assert.ErrorContains(t, err, settingsEnv)
}

func TestSnapshotCommand(t *testing.T) {
	root := writeClasses(t)
	path := filepath.Join(t.TempDir(), "snap.yaml")
	_, err := run(t, settings.New(), "snapshot", root, "--out", path)
	require.NoError(t, err)

	out, err := run(t, settings.New(), "list", path)
	require.NoError(t, err)
	assert.Equal(t, "p/Other\np/Outer\np/Outer$In\n", out)
}

func TestDumpCommand(t *testing.T) {
	root := writeClasses(t)
	out, err := run(t, settings.New(), "dump", root, "p.Outer")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "p.Outer"`)
	assert.Contains(t, out, `"innerClasses": [`)

	out, err = run(t, settings.New(), "dump", root, "p/Other", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: p/Other")

	_, err = run(t, settings.New(), "dump", root, "p/Other", "--format", "xml")
	assert.Error(t, err)
}

func TestWithOutputReportsFileErrors(t *testing.T) {
	cmd := newRootCmd(settings.New())
	path := filepath.Join(t.TempDir(), "out.txt")

	require.NoError(t, withOutput(cmd, path, func(w io.Writer) error {
		_, err := io.WriteString(w, "listing")
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "listing", string(data))

	err = withOutput(cmd, filepath.Join(t.TempDir(), "missing", "out.txt"), func(io.Writer) error { return nil })
	assert.ErrorContains(t, err, "create output")

	if _, err := os.Stat("/dev/full"); err == nil {
		_, err := run(t, settings.New(), "render", writeClasses(t), "p/Outer", "--out", "/dev/full")
		assert.Error(t, err)
	}

	// A file already closed by write fails the final close.
	err = withOutput(cmd, path, func(w io.Writer) error {
		return w.(*os.File).Close()
	})
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.ErrorContains(t, err, "close output")
}
