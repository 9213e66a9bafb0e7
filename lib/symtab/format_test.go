package symtab

import (
	"bytes"
	"debug/elf"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ii64/dt/lib/obj"
	"github.com/ii64/dt/lib/obj/elftest"
)

// offset of the Name column in both header and rows
const nameColumn = 58

var header = "Num:  Value" + strings.Repeat(" ", 12) + "Size Type     Bind   Vis" + strings.Repeat(" ", 7) + "Ndx Name\n"

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, ".symtab", nil))
	require.NoError(t, WriteTable(&buf, ".symtab", []Symbol{}))
	assert.Zero(t, buf.Len())
}

func TestWriteTableLayout(t *testing.T) {
	syms := []Symbol{
		{},
		{
			Name:       "puts",
			Version:    "LIBC_2.2.5",
			HasVersion: true,
			Type:       elf.STT_FUNC,
			Bind:       elf.STB_GLOBAL,
			Visibility: elf.STV_DEFAULT,
			Section:    NewSectionIndex(0),
		},
		{
			Name:    "main",
			Value:   0x1139,
			Size:    30,
			Type:    elf.STT_FUNC,
			Bind:    elf.STB_GLOBAL,
			Section: NewSectionIndex(14),
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, ".dynsym", syms))

	lines := strings.SplitAfter(buf.String(), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Symbol table '.dynsym' contains 3 entries:\n", lines[0])
	assert.Equal(t, header, lines[1])
	assert.Equal(t, "  0: 0000000000000000     0 NOTYPE   LOCAL   DEFAULT  UND     \n", lines[2])
	assert.Equal(t, "  1: 0000000000000000     0 FUNC     GLOBAL  DEFAULT  UND puts@LIBC_2.2.5\n", lines[3])
	assert.Equal(t, "  2: 0000000000001139    30 FUNC     GLOBAL  DEFAULT   14 main\n", lines[4])
	assert.Equal(t, "", lines[5])

	assert.Equal(t, nameColumn, strings.Index(lines[1], "Name"))
	assert.Equal(t, "puts@LIBC_2.2.5\n", lines[3][nameColumn:])
	assert.Equal(t, "main\n", lines[4][nameColumn:])
}

func TestWriteTableLoaded(t *testing.T) {
	o, err := obj.Load(t.Name(), elftest.Image{
		Static: []elftest.Symbol{
			{},
			{Name: "crtstuff.c", Info: elftest.Info(elf.STB_LOCAL, elf.STT_FILE), Shndx: uint16(elf.SHN_ABS)},
			{Name: "counter", Value: 0x4010, Size: 4, Info: elftest.Info(elf.STB_GLOBAL, elf.STT_OBJECT), Shndx: uint16(elf.SHN_COMMON)},
		},
	}.Bytes())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, o.Static.Name, ResolveSymbols(o.Static)))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Symbol table '.symtab' contains 3 entries:\n"))
	assert.Contains(t, out, "  1: 0000000000000000     0 FILE     LOCAL   DEFAULT  ABS crtstuff.c\n")
	assert.Contains(t, out, "  2: 0000000000004010     4 OBJECT   GLOBAL  DEFAULT  COM counter\n")
}

func TestWriteVersionNeeds(t *testing.T) {
	o, err := obj.Load(t.Name(), elftest.Image{
		Dynamic:    []elftest.Symbol{{}, {Name: "puts"}},
		VersionIDs: []uint16{0, 2},
		Needs: []elftest.Need{
			{File: "libc.so.6", Aux: []elftest.NeedAux{
				{Name: "GLIBC_2.34", Other: 3},
				{Name: "GLIBC_2.2.5", Other: 2, Flags: verFlagWeak},
			}},
			{File: "libm.so.6", Aux: []elftest.NeedAux{{Name: "GLIBC_2.29", Other: 4}}},
		},
	}.Bytes())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteVersionNeeds(&buf, &o.Versions))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Version needs section '.gnu.version_r' contains 2 entries:\n"))
	for _, want := range []string{"libc.so.6", "libm.so.6", "GLIBC_2.34", "GLIBC_2.2.5", "GLIBC_2.29", "WEAK", "none"} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 1, strings.Count(out, "libc.so.6"))
}

func TestWriteVersionNeedsAbsent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVersionNeeds(&buf, &obj.VersionData{}))
	require.NoError(t, WriteVersionNeeds(&buf, nil))
	assert.Zero(t, buf.Len())
}

func TestVersionFlags(t *testing.T) {
	assert.Equal(t, "none", versionFlags(0))
	assert.Equal(t, "BASE", versionFlags(verFlagBase))
	assert.Equal(t, "BASE | WEAK", versionFlags(verFlagBase|verFlagWeak))
	assert.Equal(t, "INFO | 0x10", versionFlags(verFlagInfo|0x10))
}
