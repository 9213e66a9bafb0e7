// Package elftest assembles small ELF images in memory for tests.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

// TextSection is the section index of .text when Image.Text is set.
const TextSection = 1

type Symbol struct {
	Name  string
	Value uint64
	Size  uint64
	Info  byte
	Other byte
	Shndx uint16

	// NameOffset replaces the string table offset of Name when non-nil.
	NameOffset *uint32
}

// Offset is a helper for Symbol.NameOffset.
func Offset(off uint32) *uint32 {
	return &off
}

type Need struct {
	File string
	Aux  []NeedAux
}

type NeedAux struct {
	Name  string
	Flags uint16
	Other uint16
}

// Image describes the binary to build. A nil slice omits the section it
// would produce.
type Image struct {
	Class     elf.Class
	ByteOrder binary.ByteOrder
	Type      elf.Type
	Machine   elf.Machine

	Text     []byte
	TextAddr uint64

	Static  []Symbol
	Dynamic []Symbol

	// VersionIDs becomes .gnu.version, Needs becomes .gnu.version_r.
	VersionIDs []uint16
	Needs      []Need

	DebugInfo bool
}

type section struct {
	name    string
	typ     elf.SectionType
	flags   elf.SectionFlag
	addr    uint64
	data    []byte
	link    string
	info    uint32
	entsize uint64
	align   uint64
}

type strtab struct {
	buf bytes.Buffer
	off map[string]uint32
}

func newStrtab() *strtab {
	t := &strtab{off: map[string]uint32{"": 0}}
	t.buf.WriteByte(0)
	return t
}

func (t *strtab) add(s string) uint32 {
	if off, ok := t.off[s]; ok {
		return off
	}
	off := uint32(t.buf.Len())
	t.buf.WriteString(s)
	t.buf.WriteByte(0)
	t.off[s] = off
	return off
}

func (img Image) class() elf.Class {
	if img.Class == elf.ELFCLASSNONE {
		return elf.ELFCLASS64
	}
	return img.Class
}

func (img Image) order() binary.ByteOrder {
	if img.ByteOrder == nil {
		return binary.LittleEndian
	}
	return img.ByteOrder
}

func (img Image) typ() elf.Type {
	if img.Type == elf.ET_NONE {
		return elf.ET_DYN
	}
	return img.Type
}

func (img Image) machine() elf.Machine {
	if img.Machine == elf.EM_NONE {
		return elf.EM_X86_64
	}
	return img.Machine
}

// Bytes encodes the image.
func (img Image) Bytes() []byte {
	bo := img.order()
	is64 := img.class() == elf.ELFCLASS64

	var sections []section
	if img.Text != nil {
		sections = append(sections, section{
			name:  ".text",
			typ:   elf.SHT_PROGBITS,
			flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR,
			addr:  img.TextAddr,
			data:  img.Text,
			align: 16,
		})
	}

	if img.Dynamic != nil || img.Needs != nil {
		dynstr := newStrtab()
		if img.Dynamic != nil {
			sections = append(sections, section{
				name:    ".dynsym",
				typ:     elf.SHT_DYNSYM,
				flags:   elf.SHF_ALLOC,
				data:    img.encodeSymbols(img.Dynamic, dynstr),
				link:    ".dynstr",
				info:    1,
				entsize: img.symSize(),
				align:   8,
			})
		}
		if img.VersionIDs != nil {
			var buf bytes.Buffer
			_ = binary.Write(&buf, bo, img.VersionIDs)
			sections = append(sections, section{
				name:    ".gnu.version",
				typ:     elf.SHT_GNU_VERSYM,
				flags:   elf.SHF_ALLOC,
				data:    buf.Bytes(),
				link:    ".dynsym",
				entsize: 2,
				align:   2,
			})
		}
		if img.Needs != nil {
			sections = append(sections, section{
				name:  ".gnu.version_r",
				typ:   elf.SHT_GNU_VERNEED,
				flags: elf.SHF_ALLOC,
				data:  img.encodeNeeds(dynstr),
				link:  ".dynstr",
				info:  uint32(len(img.Needs)),
				align: 8,
			})
		}
		sections = append(sections, section{
			name:  ".dynstr",
			typ:   elf.SHT_STRTAB,
			flags: elf.SHF_ALLOC,
			data:  dynstr.buf.Bytes(),
			align: 1,
		})
	} else if img.VersionIDs != nil {
		var buf bytes.Buffer
		_ = binary.Write(&buf, bo, img.VersionIDs)
		sections = append(sections, section{
			name:    ".gnu.version",
			typ:     elf.SHT_GNU_VERSYM,
			flags:   elf.SHF_ALLOC,
			data:    buf.Bytes(),
			entsize: 2,
			align:   2,
		})
	}

	if img.Static != nil {
		str := newStrtab()
		sections = append(sections, section{
			name:    ".symtab",
			typ:     elf.SHT_SYMTAB,
			data:    img.encodeSymbols(img.Static, str),
			link:    ".strtab",
			info:    1,
			entsize: img.symSize(),
			align:   8,
		})
		sections = append(sections, section{
			name:  ".strtab",
			typ:   elf.SHT_STRTAB,
			data:  str.buf.Bytes(),
			align: 1,
		})
	}

	if img.DebugInfo {
		sections = append(sections, section{
			name:  ".debug_info",
			typ:   elf.SHT_PROGBITS,
			data:  []byte{0, 0, 0, 0},
			align: 1,
		})
	}

	shstr := newStrtab()
	for _, s := range sections {
		shstr.add(s.name)
	}
	shstr.add(".shstrtab")
	sections = append(sections, section{
		name:  ".shstrtab",
		typ:   elf.SHT_STRTAB,
		data:  shstr.buf.Bytes(),
		align: 1,
	})

	index := map[string]uint32{}
	for i, s := range sections {
		index[s.name] = uint32(i + 1)
	}

	ehsize, shentsize := 52, 40
	if is64 {
		ehsize, shentsize = 64, 64
	}

	var body bytes.Buffer
	body.Write(make([]byte, ehsize))
	offsets := make([]uint64, len(sections))
	for i, s := range sections {
		for body.Len()%8 != 0 {
			body.WriteByte(0)
		}
		offsets[i] = uint64(body.Len())
		body.Write(s.data)
	}
	for body.Len()%8 != 0 {
		body.WriteByte(0)
	}
	shoff := uint64(body.Len())

	// null section header first
	body.Write(make([]byte, shentsize))
	for i, s := range sections {
		var link uint32
		if s.link != "" {
			link = index[s.link]
		}
		name := shstr.off[s.name]
		if is64 {
			_ = binary.Write(&body, bo, elf.Section64{
				Name:      name,
				Type:      uint32(s.typ),
				Flags:     uint64(s.flags),
				Addr:      s.addr,
				Off:       offsets[i],
				Size:      uint64(len(s.data)),
				Link:      link,
				Info:      s.info,
				Addralign: s.align,
				Entsize:   s.entsize,
			})
		} else {
			_ = binary.Write(&body, bo, elf.Section32{
				Name:      name,
				Type:      uint32(s.typ),
				Flags:     uint32(s.flags),
				Addr:      uint32(s.addr),
				Off:       uint32(offsets[i]),
				Size:      uint32(len(s.data)),
				Link:      link,
				Info:      s.info,
				Addralign: uint32(s.align),
				Entsize:   uint32(s.entsize),
			})
		}
	}

	out := body.Bytes()
	var ident [elf.EI_NIDENT]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(img.class())
	if bo == binary.LittleEndian {
		ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	} else {
		ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	}
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	var hdr bytes.Buffer
	shnum := uint16(len(sections) + 1)
	shstrndx := uint16(len(sections))
	if is64 {
		_ = binary.Write(&hdr, bo, elf.Header64{
			Ident:     ident,
			Type:      uint16(img.typ()),
			Machine:   uint16(img.machine()),
			Version:   uint32(elf.EV_CURRENT),
			Shoff:     shoff,
			Ehsize:    uint16(ehsize),
			Shentsize: uint16(shentsize),
			Shnum:     shnum,
			Shstrndx:  shstrndx,
		})
	} else {
		_ = binary.Write(&hdr, bo, elf.Header32{
			Ident:     ident,
			Type:      uint16(img.typ()),
			Machine:   uint16(img.machine()),
			Version:   uint32(elf.EV_CURRENT),
			Shoff:     uint32(shoff),
			Ehsize:    uint16(ehsize),
			Shentsize: uint16(shentsize),
			Shnum:     shnum,
			Shstrndx:  shstrndx,
		})
	}
	copy(out, hdr.Bytes())
	return out
}

func (img Image) symSize() uint64 {
	if img.class() == elf.ELFCLASS64 {
		return elf.Sym64Size
	}
	return elf.Sym32Size
}

func (img Image) encodeSymbols(syms []Symbol, str *strtab) []byte {
	var buf bytes.Buffer
	bo := img.order()
	for _, s := range syms {
		name := str.add(s.Name)
		if s.NameOffset != nil {
			name = *s.NameOffset
		}
		if img.class() == elf.ELFCLASS64 {
			_ = binary.Write(&buf, bo, elf.Sym64{
				Name:  name,
				Info:  s.Info,
				Other: s.Other,
				Shndx: s.Shndx,
				Value: s.Value,
				Size:  s.Size,
			})
		} else {
			_ = binary.Write(&buf, bo, elf.Sym32{
				Name:  name,
				Value: uint32(s.Value),
				Size:  uint32(s.Size),
				Info:  s.Info,
				Other: s.Other,
				Shndx: s.Shndx,
			})
		}
	}
	return buf.Bytes()
}

// encodeNeeds lays each Elf_Verneed out immediately followed by its
// Elf_Vernaux records.
func (img Image) encodeNeeds(str *strtab) []byte {
	const recSize = 16
	var buf bytes.Buffer
	bo := img.order()
	for i, n := range img.Needs {
		var next uint32
		if i != len(img.Needs)-1 {
			next = uint32(recSize * (1 + len(n.Aux)))
		}
		var aux uint32
		if len(n.Aux) > 0 {
			aux = recSize
		}
		_ = binary.Write(&buf, bo, struct {
			Version uint16
			Cnt     uint16
			File    uint32
			Aux     uint32
			Next    uint32
		}{1, uint16(len(n.Aux)), str.add(n.File), aux, next})
		for j, a := range n.Aux {
			var anext uint32
			if j != len(n.Aux)-1 {
				anext = recSize
			}
			_ = binary.Write(&buf, bo, struct {
				Hash  uint32
				Flags uint16
				Other uint16
				Name  uint32
				Next  uint32
			}{Hash(a.Name), a.Flags, a.Other, str.add(a.Name), anext})
		}
	}
	return buf.Bytes()
}

// Hash is the SysV ELF hash used for vna_hash.
func Hash(name string) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h<<4 + uint32(name[i])
		if g := h & 0xf0000000; g != 0 {
			h ^= g >> 24
		}
		h &^= 0xf0000000
	}
	return h
}

// Info packs a symbol type and binding into st_info.
func Info(bind elf.SymBind, typ elf.SymType) byte {
	return byte(bind)<<4 | byte(typ)&0xf
}
