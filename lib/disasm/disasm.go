package disasm

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/arch/arm/armasm"
	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/ppc64/ppc64asm"
	"golang.org/x/arch/x86/x86asm"
)

// https://cs.opensource.google/go/go/+/master:src/cmd/internal/objfile/disasm.go;l=386;drc=530511bacccdea0bb8a0fec644887c2613535c50;bpv=1;bpt=1

var byteOrders = map[string]binary.ByteOrder{
	"386":     binary.LittleEndian,
	"amd64":   binary.LittleEndian,
	"arm":     binary.LittleEndian,
	"arm64":   binary.LittleEndian,
	"ppc64":   binary.BigEndian,
	"ppc64le": binary.LittleEndian,
}

// minimum instruction width, bytes skipped when decoding fails
var instAlign = map[string]int{
	"386":     1,
	"amd64":   1,
	"arm":     4,
	"arm64":   4,
	"ppc64":   4,
	"ppc64le": 4,
}

type Syntax int

const (
	SyntaxGNU Syntax = iota
	SyntaxGo
)

func ParseSyntax(s string) (Syntax, error) {
	switch s {
	case "", "gnu", "att":
		return SyntaxGNU, nil
	case "go", "plan9":
		return SyntaxGo, nil
	}
	return 0, fmt.Errorf("unknown assembly syntax %q", s)
}

type DisasmFuncStr func(code []byte, pc uint64, symname SymLookup, text io.ReaderAt, syntax Syntax) (f string, size int, err error)

type SymLookup func(addr uint64) (name string, base uint64)

func GoSyntax(inst any, pc uint64, symname SymLookup, text io.ReaderAt) string {
	switch inst := inst.(type) {
	case x86asm.Inst:
		return x86asm.GoSyntax(inst, pc, x86asm.SymLookup(symname))
	case armasm.Inst:
		return armasm.GoSyntax(inst, pc, symname, text)
	case arm64asm.Inst:
		return arm64asm.GoSyntax(inst, pc, symname, text)
	case ppc64asm.Inst:
		return ppc64asm.GoSyntax(inst, pc, symname)
	}
	panic(fmt.Sprintf("go syntax format not supported: %T", inst))
}

func GNUSyntax(inst any, pc uint64, symname SymLookup) string {
	switch inst := inst.(type) {
	case x86asm.Inst:
		return x86asm.GNUSyntax(inst, pc, x86asm.SymLookup(symname))
	case armasm.Inst:
		return armasm.GNUSyntax(inst)
	case arm64asm.Inst:
		return arm64asm.GNUSyntax(inst)
	case ppc64asm.Inst:
		return ppc64asm.GNUSyntax(inst, pc)
	}
	panic(fmt.Sprintf("gnu syntax format not supported: %T", inst))
}

func format(syntax Syntax, inst any, pc uint64, symname SymLookup, text io.ReaderAt) string {
	if syntax == SyntaxGo {
		return GoSyntax(inst, pc, symname, text)
	}
	return GNUSyntax(inst, pc, symname)
}

// Text is one rendered instruction.
type Text struct {
	Asm      string
	Comments []string
}

func (t Text) String() string {
	if t.Comments == nil {
		return t.Asm
	}
	return t.Asm + "\t// " + strings.Join(t.Comments, "\t// ")
}

// instEncodeRawBytes spells b as data directives, widest first.
func instEncodeRawBytes(bo binary.ByteOrder, b []byte) (insts []string) {
	var nb int
	for len(b) > 0 {
		switch {
		case len(b) >= 8:
			v := bo.Uint64(b)
			insts = append(insts, "QUAD $0x"+strconv.FormatUint(v, 16))
			nb = 8
		case len(b) >= 4:
			v := bo.Uint32(b)
			insts = append(insts, "LONG $0x"+strconv.FormatUint(uint64(v), 16))
			nb = 4
		case len(b) >= 2:
			v := bo.Uint16(b)
			insts = append(insts, "WORD $0x"+strconv.FormatUint(uint64(v), 16))
			nb = 2
		default:
			insts = append(insts, "BYTE $0x"+strconv.FormatUint(uint64(b[0]), 16))
			nb = 1
		}
		b = b[nb:]
	}
	return
}
