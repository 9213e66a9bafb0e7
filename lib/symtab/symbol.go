package symtab

import (
	"debug/elf"
	"strconv"
	"strings"

	"github.com/ii64/dt/lib/obj"
)

// Placeholder stands in for any name that cannot be read from its string
// table.
const Placeholder = "<FAILED TO RETRIEVE>"

// Symbol is a symbol table entry with its name resolved.
type Symbol struct {
	Name string
	// Version is set only for dynamic symbols with a matching
	// .gnu.version_r entry.
	Version    string
	HasVersion bool

	Value      uint64
	Size       uint64
	Type       elf.SymType
	Bind       elf.SymBind
	Visibility elf.SymVis
	Section    SectionIndex

	Raw obj.RawSymbol
}

// DisplayName is Name, or name@version when a version was attached.
func (s Symbol) DisplayName() string {
	if s.HasVersion {
		return s.Name + "@" + s.Version
	}
	return s.Name
}

func (s Symbol) TypeString() string {
	return strings.TrimPrefix(s.Type.String(), "STT_")
}

func (s Symbol) BindString() string {
	return strings.TrimPrefix(s.Bind.String(), "STB_")
}

func (s Symbol) VisibilityString() string {
	return strings.TrimPrefix(s.Visibility.String(), "STV_")
}

type SectionKind uint8

// The zero SectionIndex is SHN_UNDEF.
const (
	SectionUndefined SectionKind = iota
	SectionNumbered
	SectionAbsolute
	SectionReservedLow
	SectionCommon
)

// SectionIndex is a decoded st_shndx.
type SectionIndex struct {
	Kind  SectionKind
	Index uint16
}

func NewSectionIndex(shndx uint16) SectionIndex {
	idx := SectionIndex{Kind: SectionNumbered, Index: shndx}
	switch elf.SectionIndex(shndx) {
	case elf.SHN_UNDEF:
		idx.Kind = SectionUndefined
	case elf.SHN_ABS:
		idx.Kind = SectionAbsolute
	case elf.SHN_LORESERVE:
		idx.Kind = SectionReservedLow
	case elf.SHN_COMMON:
		idx.Kind = SectionCommon
	}
	return idx
}

func (s SectionIndex) String() string {
	switch s.Kind {
	case SectionUndefined:
		return "UND"
	case SectionAbsolute:
		return "ABS"
	case SectionReservedLow:
		return "LORESRVE"
	case SectionCommon:
		return "COM"
	}
	return strconv.FormatUint(uint64(s.Index), 10)
}
