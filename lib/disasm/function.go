package disasm

import (
	"bufio"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/ii64/dt/lib/obj"
	"github.com/ii64/dt/lib/symtab"
	"github.com/ii64/dt/lib/util"
)

var (
	ErrNoFunction  = errors.New("function not found")
	ErrUnsupported = errors.New("unsupported machine")
)

// bytes shown per listing line
const bytesPerLine = 8

// Arch maps the ELF machine of o to a decoder name.
func Arch(o *obj.Object) (string, error) {
	switch o.Elf.Machine {
	case elf.EM_386:
		return "386", nil
	case elf.EM_X86_64:
		return "amd64", nil
	case elf.EM_ARM:
		return "arm", nil
	case elf.EM_AARCH64:
		return "arm64", nil
	case elf.EM_PPC64:
		if o.Elf.ByteOrder == binary.LittleEndian {
			return "ppc64le", nil
		}
		return "ppc64", nil
	}
	return "", errors.Wrapf(ErrUnsupported, "%s", o.Elf.Machine)
}

// Function writes an objdump style listing of the FUNC symbol called name.
// syms is searched in order and the first defined match is used.
func Function(w io.Writer, o *obj.Object, syms []symtab.Symbol, name string, syntax Syntax) error {
	arch, err := Arch(o)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(syms, func(s symtab.Symbol) bool {
		return s.Type == elf.STT_FUNC && s.Section.Kind == symtab.SectionNumbered && s.Name == name
	})
	if i < 0 {
		return errors.Wrapf(ErrNoFunction, "%q", name)
	}
	fn := syms[i]

	code, err := functionBytes(o, fn)
	if err != nil {
		return errors.Wrapf(err, "%q", name)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Disassembly of %s (0x%x, %d bytes):\n", name, fn.Value, len(code))
	listing(bw, arch, code, fn.Value, newSymbols(syms).lookup, syntax)
	return bw.Flush()
}

func functionBytes(o *obj.Object, fn symtab.Symbol) ([]byte, error) {
	idx := int(fn.Section.Index)
	if idx >= len(o.Elf.Sections) {
		return nil, errors.Errorf("section index %d out of range", idx)
	}
	sec := o.Elf.Sections[idx]
	if sec.Type == elf.SHT_NOBITS {
		return nil, errors.Errorf("section %s has no data", sec.Name)
	}
	dat, err := sec.Data()
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", sec.Name)
	}

	off := fn.Value
	if o.Elf.Type != elf.ET_REL {
		if off < sec.Addr {
			return nil, errors.Errorf("address 0x%x below section %s", fn.Value, sec.Name)
		}
		off -= sec.Addr
	}
	if fn.Size == 0 || off > uint64(len(dat)) || fn.Size > uint64(len(dat))-off {
		return nil, errors.Errorf("function range 0x%x+%d outside section %s", fn.Value, fn.Size, sec.Name)
	}
	return dat[off : off+fn.Size], nil
}

func listing(w io.Writer, arch string, code []byte, pc uint64, symname SymLookup, syntax Syntax) {
	decode := disasms[arch]
	text := &textReader{code: code, base: pc}
	for len(code) > 0 {
		f, size, err := decode(code, pc, symname, text, syntax)
		var t Text
		if err != nil || size <= 0 || size > len(code) {
			size = instAlign[arch]
			if size > len(code) {
				size = len(code)
			}
			t.Asm = strings.Join(instEncodeRawBytes(byteOrders[arch], code[:size]), "; ")
			if err != nil {
				t.Comments = []string{err.Error()}
			}
		} else {
			t.Asm = f
		}
		writeInst(w, pc, code[:size], t)
		code = code[size:]
		pc += uint64(size)
	}
}

// textReader serves the function bytes at their load addresses, as the
// arm decoders read literal pools by absolute pc.
type textReader struct {
	code []byte
	base uint64
}

func (r *textReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || uint64(off) < r.base || uint64(off)-r.base >= uint64(len(r.code)) {
		return 0, io.EOF
	}
	n := copy(p, r.code[uint64(off)-r.base:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func writeInst(w io.Writer, pc uint64, raw []byte, t Text) {
	for i, chunk := range util.Chunk(raw, bytesPerLine) {
		hex := fmt.Sprintf("% x", chunk)
		if i == 0 {
			fmt.Fprintf(w, "%8x:\t%-23s\t%s\n", pc, hex, t)
			continue
		}
		fmt.Fprintf(w, "%8x:\t%s\n", pc+uint64(i*bytesPerLine), hex)
	}
}

type symbol struct {
	name  string
	value uint64
	size  uint64
}

// symbols answers address lookups for the instruction formatters, sorted by
// address.
type symbols []symbol

func newSymbols(syms []symtab.Symbol) symbols {
	var ss symbols
	for _, s := range syms {
		if s.Section.Kind != symtab.SectionNumbered || s.Name == "" || s.Name == symtab.Placeholder {
			continue
		}
		if s.Type != elf.STT_FUNC && s.Type != elf.STT_OBJECT {
			continue
		}
		ss = append(ss, symbol{name: s.Name, value: s.Value, size: s.Size})
	}
	sort.SliceStable(ss, func(i, j int) bool { return ss[i].value < ss[j].value })
	return ss
}

func (ss symbols) lookup(addr uint64) (name string, base uint64) {
	i := sort.Search(len(ss), func(i int) bool { return ss[i].value > addr })
	if i == 0 {
		return "", 0
	}
	s := ss[i-1]
	if addr == s.value || addr < s.value+s.size {
		return s.name, s.value
	}
	return "", 0
}
