package main

import (
	"bytes"
	"debug/elf"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ii64/dt/cmd"
	"github.com/ii64/dt/lib/obj/elftest"
)

func redirect(t *testing.T, out, console io.Writer) {
	t.Helper()
	oldOut, oldConsole := stdout, consoleOutput
	stdout, consoleOutput = out, console
	t.Cleanup(func() { stdout, consoleOutput = oldOut, oldConsole })
}

func sampleFile(t *testing.T) string {
	t.Helper()
	b := elftest.Image{
		Type: elf.ET_DYN,
		Static: []elftest.Symbol{
			{},
			{Name: "main", Value: 0x1130, Size: 1, Info: elftest.Info(elf.STB_GLOBAL, elf.STT_FUNC), Shndx: elftest.TextSection},
		},
		Text:     []byte{0xc3},
		TextAddr: 0x1130,
	}.Bytes()
	path := filepath.Join(t.TempDir(), "a.out")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func TestMainExitCodes(t *testing.T) {
	var out, console bytes.Buffer
	redirect(t, &out, &console)
	path := sampleFile(t)

	for _, tc := range []struct {
		args []string
		want cmd.Code
	}{
		{nil, cmd.MissingArg},
		{[]string{path, "--no-such-flag"}, cmd.BadArg},
		{[]string{path, "-f", "main", "-s"}, cmd.BadArg},
		{[]string{filepath.Join(t.TempDir(), "missing")}, cmd.IoReadFail},
		{[]string{path, "-s"}, cmd.Success},
	} {
		out.Reset()
		console.Reset()
		assert.Equal(t, tc.want, _main(tc.args), tc.args)
		if tc.want != cmd.Success {
			assert.Contains(t, console.String(), "error: ", tc.args)
		}
	}
}

func TestMainConcurrent(t *testing.T) {
	redirect(t, io.Discard, io.Discard)
	path := sampleFile(t)

	var wg sync.WaitGroup
	codes := make([]cmd.Code, 4)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			args := []string{path, "-s"}
			if i%2 == 0 {
				args = append(args, "-v")
			}
			codes[i] = _main(args)
		}(i)
	}
	wg.Wait()
	for _, code := range codes {
		assert.Equal(t, cmd.Success, code)
	}
}

func TestNewLogger(t *testing.T) {
	var console bytes.Buffer
	redirect(t, io.Discard, &console)

	require.NoError(t, level.Debug(newLogger(false)).Log("msg", "hidden"))
	require.NoError(t, level.Info(newLogger(false)).Log("msg", "shown"))
	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "msg=shown")

	require.NoError(t, level.Debug(newLogger(true)).Log("msg", "verbose"))
	assert.Contains(t, console.String(), "msg=verbose")
}
