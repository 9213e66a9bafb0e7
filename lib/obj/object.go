package obj

import (
	"debug/elf"
)

// Object is a parsed ELF binary together with the raw tables the symbol
// listing is built from. The symbol, string and version tables are copied
// during Load, but Elf reads section contents from the buffer passed to Load
// on demand, so that buffer must not change while the Object is in use.
type Object struct {
	Label string
	Elf   *elf.File

	// Static is .symtab, Dynamic is .dynsym. Either is nil when the binary
	// has no such section.
	Static  *SymbolTable
	Dynamic *SymbolTable

	Versions VersionData
}

// SymbolTable is one symbol section decoded entry by entry. Entries keeps the
// null entry at index 0 so positions match the section layout.
type SymbolTable struct {
	Name    string
	Section elf.SectionIndex
	Entries []RawSymbol
	Strings StringTable
}

func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Entries)
}

// RawSymbol is a class independent view of elf.Sym32 / elf.Sym64.
type RawSymbol struct {
	Index int
	Name  uint32
	Info  byte
	Other byte
	Shndx uint16
	Value uint64
	Size  uint64

	// Version is the .gnu.version entry at the same position, valid only
	// when Versioned is set.
	Version   uint16
	Versioned bool
}

func (o *Object) HasDebugInfo() bool {
	return o.Elf.Section(".debug_info") != nil
}

func (o *Object) sectionByType(typ elf.SectionType) (*elf.Section, elf.SectionIndex) {
	for i, s := range o.Elf.Sections {
		if s.Type == typ {
			return s, elf.SectionIndex(i)
		}
	}
	return nil, 0
}

func (o *Object) linkedStrings(s *elf.Section) StringTable {
	if s.Link == 0 || int(s.Link) >= len(o.Elf.Sections) {
		return nil
	}
	dat, err := o.Elf.Sections[s.Link].Data()
	if err != nil {
		return nil
	}
	return StringTable(dat)
}
