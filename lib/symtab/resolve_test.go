package symtab

import (
	"debug/elf"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ii64/dt/lib/obj"
	"github.com/ii64/dt/lib/obj/elftest"
)

func load(t *testing.T, img elftest.Image) *obj.Object {
	t.Helper()
	o, err := obj.Load(t.Name(), img.Bytes())
	require.NoError(t, err)
	return o
}

func TestResolveSymbolsKeepsOrder(t *testing.T) {
	o := load(t, elftest.Image{
		Static: []elftest.Symbol{
			{},
			{Name: "b", Value: 2, Info: elftest.Info(elf.STB_LOCAL, elf.STT_OBJECT), Shndx: 3},
			{Name: "a", Value: 1, Info: elftest.Info(elf.STB_GLOBAL, elf.STT_FUNC), Shndx: uint16(elf.SHN_ABS)},
			{Name: "a", Value: 1, Info: elftest.Info(elf.STB_WEAK, elf.STT_NOTYPE)},
		},
	})
	syms := ResolveSymbols(o.Static)
	require.Len(t, syms, 4)

	assert.Equal(t, "", syms[0].Name)
	assert.Equal(t, "b", syms[1].Name)
	assert.Equal(t, "a", syms[2].Name)
	assert.Equal(t, "a", syms[3].Name)
	for i, s := range syms {
		assert.Equal(t, i, s.Raw.Index)
		assert.False(t, s.HasVersion)
	}

	assert.Equal(t, elf.STT_OBJECT, syms[1].Type)
	assert.Equal(t, elf.STB_LOCAL, syms[1].Bind)
	assert.Equal(t, "3", syms[1].Section.String())
	assert.Equal(t, "FUNC", syms[2].TypeString())
	assert.Equal(t, "GLOBAL", syms[2].BindString())
	assert.Equal(t, "DEFAULT", syms[2].VisibilityString())
	assert.Equal(t, "ABS", syms[2].Section.String())
	assert.Equal(t, "WEAK", syms[3].BindString())
	assert.Equal(t, "UND", syms[3].Section.String())
}

func TestResolveSymbolsPlaceholder(t *testing.T) {
	o := load(t, elftest.Image{
		Static: []elftest.Symbol{
			{},
			{Name: "broken", NameOffset: elftest.Offset(0xffff)},
			{Name: "fine"},
		},
	})
	syms := ResolveSymbols(o.Static)
	require.Len(t, syms, 3)
	assert.Equal(t, Placeholder, syms[1].Name)
	assert.Equal(t, "fine", syms[2].Name)
}

func TestResolveSymbolsNilTable(t *testing.T) {
	assert.Empty(t, ResolveSymbols(nil))
}

func TestResolveSymbolsVisibility(t *testing.T) {
	o := load(t, elftest.Image{
		Static: []elftest.Symbol{
			{Name: "hidden", Other: byte(elf.STV_HIDDEN)},
			{Name: "protected", Other: byte(elf.STV_PROTECTED)},
		},
	})
	syms := ResolveSymbols(o.Static)
	assert.Equal(t, "HIDDEN", syms[0].VisibilityString())
	assert.Equal(t, "PROTECTED", syms[1].VisibilityString())
}

func TestResolveSymbolsDemangle(t *testing.T) {
	o := load(t, elftest.Image{
		Static: []elftest.Symbol{
			{Name: "_ZN3foo3barEv"},
			{Name: "plain_c"},
		},
	})

	syms := Resolver{}.ResolveSymbols(o.Static)
	assert.Equal(t, "_ZN3foo3barEv", syms[0].Name)

	syms = Resolver{Demangle: DemangleFull}.ResolveSymbols(o.Static)
	assert.Equal(t, "foo::bar()", syms[0].Name)
	assert.Equal(t, "plain_c", syms[1].Name)

	syms = Resolver{Demangle: DemangleSimplified}.ResolveSymbols(o.Static)
	assert.Equal(t, "foo::bar", syms[0].Name)
}

func TestDemangleOptions(t *testing.T) {
	for _, mode := range DemangleModes {
		_, err := DemangleOptions(mode)
		assert.NoError(t, err, mode)
	}
	opts, err := DemangleOptions("")
	assert.NoError(t, err)
	assert.Empty(t, opts)
	_, err = DemangleOptions("everything")
	assert.Error(t, err)
}

func TestResolveVersions(t *testing.T) {
	o := load(t, elftest.Image{
		Dynamic: []elftest.Symbol{
			{},
			{Name: "printf", Info: elftest.Info(elf.STB_GLOBAL, elf.STT_FUNC)},
			{Name: "local_thing", Info: elftest.Info(elf.STB_GLOBAL, elf.STT_FUNC), Shndx: 12},
			{Name: "memcpy", Info: elftest.Info(elf.STB_GLOBAL, elf.STT_FUNC)},
		},
		VersionIDs: []uint16{0, 2, 1, 3},
		Needs: []elftest.Need{
			{File: "libc.so.6", Aux: []elftest.NeedAux{
				{Name: "LIBC_2.2.5", Other: 2},
				{Name: "GLIBC_2.14", Other: 3},
			}},
		},
	})
	syms := ResolveSymbols(o.Dynamic)
	n := ResolveVersions(syms, &o.Versions)
	assert.Equal(t, 2, n)

	assert.False(t, syms[0].HasVersion)
	assert.Equal(t, "printf@LIBC_2.2.5", syms[1].DisplayName())
	assert.False(t, syms[2].HasVersion, "global version id has no need record")
	assert.Equal(t, "local_thing", syms[2].DisplayName())
	assert.Equal(t, "memcpy@GLIBC_2.14", syms[3].DisplayName())
}

func TestResolveVersionsHiddenBit(t *testing.T) {
	syms := []Symbol{{Name: "f", Raw: obj.RawSymbol{Version: 0x8002, Versioned: true}}}
	v := &obj.VersionData{
		State:   obj.VersionsPresent,
		Needs:   []obj.VersionNeed{{Aux: []obj.VersionAux{{Other: 2, Name: 1}}}},
		Strings: obj.StringTable("\x00V1\x00"),
	}
	assert.Equal(t, 1, ResolveVersions(syms, v))
	assert.Equal(t, "f@V1", syms[0].DisplayName())
}

func TestResolveVersionsFirstMatchWins(t *testing.T) {
	strs := obj.StringTable("\x00FIRST\x00SECOND\x00")
	v := &obj.VersionData{
		State: obj.VersionsPresent,
		Needs: []obj.VersionNeed{
			{Aux: []obj.VersionAux{{Other: 5, Name: 1}}},
			{Aux: []obj.VersionAux{{Other: 5, Name: 7}, {Other: 6, Name: 7}}},
		},
		Strings: strs,
	}
	syms := []Symbol{
		{Name: "a", Raw: obj.RawSymbol{Version: 5, Versioned: true}},
		{Name: "b", Raw: obj.RawSymbol{Version: 6, Versioned: true}},
	}
	for i := 0; i < 3; i++ {
		ResolveVersions(syms, v)
		assert.Equal(t, "FIRST", syms[0].Version)
		assert.Equal(t, "SECOND", syms[1].Version)
	}
}

func TestResolveVersionsPlaceholderName(t *testing.T) {
	v := &obj.VersionData{
		State:   obj.VersionsPresent,
		Needs:   []obj.VersionNeed{{Aux: []obj.VersionAux{{Other: 2, Name: 400}}}},
		Strings: obj.StringTable("\x00"),
	}
	syms := []Symbol{{Name: "x", Raw: obj.RawSymbol{Version: 2, Versioned: true}}}
	assert.Equal(t, 1, ResolveVersions(syms, v))
	assert.Equal(t, "x@"+Placeholder, syms[0].DisplayName())
}

func TestResolveVersionsAbsent(t *testing.T) {
	o := load(t, elftest.Image{
		Dynamic: []elftest.Symbol{{}, {Name: "puts"}},
	})
	require.False(t, o.Versions.Present())
	syms := ResolveSymbols(o.Dynamic)
	assert.Equal(t, 0, ResolveVersions(syms, &o.Versions))
	for _, s := range syms {
		assert.False(t, s.HasVersion)
		assert.Empty(t, s.Version)
	}

	assert.Equal(t, 0, ResolveVersions(syms, nil))
}

func TestResolveVersionsEmptySymbols(t *testing.T) {
	v := &obj.VersionData{
		State: obj.VersionsPresent,
		Needs: []obj.VersionNeed{{Aux: []obj.VersionAux{{Other: 2, Name: 1}}}},
	}
	assert.Equal(t, 0, ResolveVersions(nil, v))
	assert.Equal(t, 0, ResolveVersions([]Symbol{}, v))
}

func TestSectionIndex(t *testing.T) {
	assert.Equal(t, "UND", NewSectionIndex(0).String())
	assert.Equal(t, SectionUndefined, NewSectionIndex(0).Kind)
	assert.Equal(t, "ABS", NewSectionIndex(uint16(elf.SHN_ABS)).String())
	assert.Equal(t, "COM", NewSectionIndex(uint16(elf.SHN_COMMON)).String())
	assert.Equal(t, "LORESRVE", NewSectionIndex(uint16(elf.SHN_LORESERVE)).String())
	assert.Equal(t, "5", NewSectionIndex(5).String())
	assert.Equal(t, SectionNumbered, NewSectionIndex(5).Kind)

	assert.Equal(t, "UND", SectionIndex{}.String())
	assert.Equal(t, "UND", Symbol{}.Section.String())
}
