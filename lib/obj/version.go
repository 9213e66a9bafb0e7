package obj

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

// VersionMask strips the hidden bit from a .gnu.version entry.
const VersionMask = 0x7fff

type VersionState uint8

const (
	// VersionsAbsent: neither .gnu.version nor .gnu.version_r exists.
	VersionsAbsent VersionState = iota
	VersionsPresent
)

// VersionData holds the GNU symbol versioning sections of a binary. The zero
// value is VersionsAbsent.
type VersionData struct {
	State VersionState

	// Symbols is .gnu.version as read, one entry per .dynsym entry.
	Symbols []uint16
	// Needs is the .gnu.version_r chain.
	Needs []VersionNeed
	// Strings is the string table .gnu.version_r links to, normally .dynstr.
	Strings StringTable
}

func (v *VersionData) Present() bool {
	return v != nil && v.State == VersionsPresent
}

// VersionNeed is one Elf_Verneed record.
type VersionNeed struct {
	Version uint16
	File    uint32
	Aux     []VersionAux
}

// VersionAux is one Elf_Vernaux record.
type VersionAux struct {
	Hash  uint32
	Flags uint16
	Other uint16
	Name  uint32
}

// on-disk layouts, identical for ELFCLASS32 and ELFCLASS64.
type verneed struct {
	Version uint16
	Cnt     uint16
	File    uint32
	Aux     uint32
	Next    uint32
}

type vernaux struct {
	Hash  uint32
	Flags uint16
	Other uint16
	Name  uint32
	Next  uint32
}

func (o *Object) loadVersions() {
	versym, _ := o.sectionByType(elf.SHT_GNU_VERSYM)
	verneed, _ := o.sectionByType(elf.SHT_GNU_VERNEED)
	if versym == nil && verneed == nil {
		return
	}
	o.Versions.State = VersionsPresent

	if versym != nil {
		if dat, err := versym.Data(); err == nil {
			o.Versions.Symbols = decodeVersionSymbols(dat, o.Elf.ByteOrder)
		}
	}
	if verneed != nil {
		if dat, err := verneed.Data(); err == nil {
			o.Versions.Needs = decodeVersionNeeds(dat, o.Elf.ByteOrder, int(verneed.Info))
		}
		o.Versions.Strings = o.linkedStrings(verneed)
	}

	// pair .gnu.version with .dynsym once, here, so nothing downstream has to
	// rely on two slices staying aligned.
	if o.Dynamic != nil {
		n := len(o.Dynamic.Entries)
		if len(o.Versions.Symbols) < n {
			n = len(o.Versions.Symbols)
		}
		for i := 0; i < n; i++ {
			o.Dynamic.Entries[i].Version = o.Versions.Symbols[i]
			o.Dynamic.Entries[i].Versioned = true
		}
	}
}

func decodeVersionSymbols(dat []byte, bo binary.ByteOrder) []uint16 {
	ids := make([]uint16, len(dat)/2)
	for i := range ids {
		ids[i] = bo.Uint16(dat[i*2:])
	}
	return ids
}

// decodeVersionNeeds walks the verneed chain. count is sh_info; zero means
// follow vn_next until it ends. A record that does not fit in dat ends the
// walk and what was read so far is returned.
func decodeVersionNeeds(dat []byte, bo binary.ByteOrder, count int) (needs []VersionNeed) {
	var off uint64
	for i := 0; count == 0 || i < count; i++ {
		if off >= uint64(len(dat)) {
			break
		}
		var rec verneed
		if err := binary.Read(bytes.NewReader(dat[off:]), bo, &rec); err != nil {
			break
		}
		need := VersionNeed{
			Version: rec.Version,
			File:    rec.File,
			Aux:     decodeVersionAux(dat, bo, off+uint64(rec.Aux), int(rec.Cnt)),
		}
		needs = append(needs, need)
		if rec.Next == 0 {
			break
		}
		off += uint64(rec.Next)
	}
	return
}

func decodeVersionAux(dat []byte, bo binary.ByteOrder, off uint64, count int) (aux []VersionAux) {
	for j := 0; j < count; j++ {
		if off >= uint64(len(dat)) {
			break
		}
		var rec vernaux
		if err := binary.Read(bytes.NewReader(dat[off:]), bo, &rec); err != nil {
			break
		}
		aux = append(aux, VersionAux{
			Hash:  rec.Hash,
			Flags: rec.Flags,
			Other: rec.Other,
			Name:  rec.Name,
		})
		if rec.Next == 0 {
			break
		}
		off += uint64(rec.Next)
	}
	return
}
