package disasm

import (
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/arch/arm/armasm"
	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/ppc64/ppc64asm"
	"golang.org/x/arch/x86/x86asm"
)

var disasms = map[string]DisasmFuncStr{
	"386":     disasm_386_str,
	"amd64":   disasm_amd64_str,
	"arm":     disasm_arm_str,
	"arm64":   disasm_arm64_str,
	"ppc64":   disasm_ppc64_str_gen(byteOrders["ppc64"]),
	"ppc64le": disasm_ppc64_str_gen(byteOrders["ppc64le"]),
}

var errUndecodable = errors.New("undecodable instruction")

// x86asm.Decode reports a lone prefix or an opcode cut short by the end of
// code as an instruction without an Op.
func checkX86(inst x86asm.Inst, code []byte) error {
	if inst.Op == 0 || inst.Len <= 0 || inst.Len > len(code) {
		return errUndecodable
	}
	return nil
}

func disasm_386(code []byte) (inst x86asm.Inst, err error) {
	if inst, err = x86asm.Decode(code, 32); err != nil {
		return
	}
	err = checkX86(inst, code)
	return
}

func disasm_386_str(code []byte, pc uint64, symname SymLookup, text io.ReaderAt, syntax Syntax) (f string, size int, err error) {
	var inst x86asm.Inst
	inst, err = disasm_386(code)
	if err != nil {
		return
	}
	f = format(syntax, inst, pc, symname, text)
	size = inst.Len
	return
}

func disasm_amd64(code []byte) (inst x86asm.Inst, err error) {
	if inst, err = x86asm.Decode(code, 64); err != nil {
		return
	}
	err = checkX86(inst, code)
	return
}

func disasm_amd64_str(code []byte, pc uint64, symname SymLookup, text io.ReaderAt, syntax Syntax) (f string, size int, err error) {
	var inst x86asm.Inst
	inst, err = disasm_amd64(code)
	if err != nil {
		return
	}
	f = format(syntax, inst, pc, symname, text)
	size = inst.Len
	return
}

func disasm_arm(code []byte) (inst armasm.Inst, err error) {
	return armasm.Decode(code, armasm.ModeARM)
}

func disasm_arm_str(code []byte, pc uint64, symname SymLookup, text io.ReaderAt, syntax Syntax) (f string, size int, err error) {
	var inst armasm.Inst
	inst, err = disasm_arm(code)
	if err != nil {
		return
	}
	f = format(syntax, inst, pc, symname, text)
	size = inst.Len
	return
}

func disasm_arm64(code []byte) (inst arm64asm.Inst, err error) {
	return arm64asm.Decode(code)
}

func disasm_arm64_str(code []byte, pc uint64, symname SymLookup, text io.ReaderAt, syntax Syntax) (f string, size int, err error) {
	var inst arm64asm.Inst
	inst, err = disasm_arm64(code)
	if err != nil {
		return
	}
	f = format(syntax, inst, pc, symname, text)
	size = 4
	return
}

func disasm_ppc64(code []byte, byteOrder binary.ByteOrder) (inst ppc64asm.Inst, err error) {
	return ppc64asm.Decode(code, byteOrder)
}

func disasm_ppc64_str_gen(byteOrder binary.ByteOrder) DisasmFuncStr {
	return func(code []byte, pc uint64, symname SymLookup, text io.ReaderAt, syntax Syntax) (f string, size int, err error) {
		var inst ppc64asm.Inst
		inst, err = disasm_ppc64(code, byteOrder)
		if err != nil {
			return
		}
		f = format(syntax, inst, pc, symname, text)
		size = inst.Len
		return
	}
}
