package obj

import (
	"bytes"
	"debug/elf"
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrMalformed is the cause of every error returned by Load.
var ErrMalformed = errors.New("malformed ELF object")

// Load parses b as an ELF object. label only names the object in errors.
func Load(label string, b []byte) (o *Object, err error) {
	var e *elf.File
	e, err = elf.NewFile(bytes.NewReader(b))
	if err != nil {
		err = errors.Wrapf(ErrMalformed, "%s: %v", label, err)
		return
	}
	o = &Object{
		Label: label,
		Elf:   e,
	}
	if err = o.init(); err != nil {
		return nil, err
	}
	return
}

func (o *Object) init() (err error) {
	o.Static, err = o.loadSymbolTable(elf.SHT_SYMTAB)
	if err != nil {
		return
	}
	o.Dynamic, err = o.loadSymbolTable(elf.SHT_DYNSYM)
	if err != nil {
		return
	}
	o.loadVersions()
	return
}

func (o *Object) loadSymbolTable(typ elf.SectionType) (*SymbolTable, error) {
	s, idx := o.sectionByType(typ)
	if s == nil {
		return nil, nil
	}
	dat, err := s.Data()
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "%s: read %s: %v", o.Label, s.Name, err)
	}
	entries, err := decodeSymbols(dat, o.Elf.Class, o.Elf.ByteOrder)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "%s: decode %s: %v", o.Label, s.Name, err)
	}
	return &SymbolTable{
		Name:    s.Name,
		Section: idx,
		Entries: entries,
		Strings: o.linkedStrings(s),
	}, nil
}

func decodeSymbols(dat []byte, class elf.Class, bo binary.ByteOrder) (syms []RawSymbol, err error) {
	switch class {
	case elf.ELFCLASS32:
		raw := make([]elf.Sym32, len(dat)/elf.Sym32Size)
		if err = binary.Read(bytes.NewReader(dat), bo, raw); err != nil {
			return
		}
		syms = make([]RawSymbol, len(raw))
		for i, s := range raw {
			syms[i] = RawSymbol{
				Index: i,
				Name:  s.Name,
				Info:  s.Info,
				Other: s.Other,
				Shndx: s.Shndx,
				Value: uint64(s.Value),
				Size:  uint64(s.Size),
			}
		}
	case elf.ELFCLASS64:
		raw := make([]elf.Sym64, len(dat)/elf.Sym64Size)
		if err = binary.Read(bytes.NewReader(dat), bo, raw); err != nil {
			return
		}
		syms = make([]RawSymbol, len(raw))
		for i, s := range raw {
			syms[i] = RawSymbol{
				Index: i,
				Name:  s.Name,
				Info:  s.Info,
				Other: s.Other,
				Shndx: s.Shndx,
				Value: s.Value,
				Size:  s.Size,
			}
		}
	default:
		err = errors.Errorf("unsupported class %s", class)
	}
	return
}
