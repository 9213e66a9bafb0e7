package symtab

import (
	"debug/elf"

	"github.com/ianlancetaylor/demangle"

	"github.com/ii64/dt/lib/obj"
)

// Resolver turns raw symbol table entries into Symbols and attaches GNU
// version names to dynamic symbols.
type Resolver struct {
	// Demangle is applied to every symbol name when non-empty.
	Demangle []demangle.Option
}

// ResolveSymbols returns one Symbol per entry of t, in the same order. Names
// that cannot be read from the string table become Placeholder.
func (r Resolver) ResolveSymbols(t *obj.SymbolTable) []Symbol {
	if t == nil {
		return nil
	}
	syms := make([]Symbol, len(t.Entries))
	for i, raw := range t.Entries {
		name, ok := t.Strings.Lookup(raw.Name)
		if !ok {
			name = Placeholder
		} else if len(r.Demangle) > 0 {
			name = demangle.Filter(name, r.Demangle...)
		}
		syms[i] = Symbol{
			Name:       name,
			Value:      raw.Value,
			Size:       raw.Size,
			Type:       elf.ST_TYPE(raw.Info),
			Bind:       elf.ST_BIND(raw.Info),
			Visibility: elf.ST_VISIBILITY(raw.Other),
			Section:    NewSectionIndex(raw.Shndx),
			Raw:        raw,
		}
	}
	return syms
}

// ResolveVersions sets Version on every symbol whose .gnu.version entry
// matches a vna_other of some .gnu.version_r record and returns how many were
// set. When two records share an identifier the first one in the chain wins.
func (r Resolver) ResolveVersions(syms []Symbol, v *obj.VersionData) (n int) {
	if len(syms) == 0 || !v.Present() {
		return 0
	}
	names := versionNames(v)
	if len(names) == 0 {
		return 0
	}
	for i := range syms {
		raw := &syms[i].Raw
		if !raw.Versioned {
			continue
		}
		name, ok := names[raw.Version&obj.VersionMask]
		if !ok {
			continue
		}
		syms[i].Version = name
		syms[i].HasVersion = true
		n++
	}
	return
}

func versionNames(v *obj.VersionData) map[uint16]string {
	names := map[uint16]string{}
	for _, need := range v.Needs {
		for _, aux := range need.Aux {
			if _, seen := names[aux.Other]; seen {
				continue
			}
			name, ok := v.Strings.Lookup(aux.Name)
			if !ok {
				name = Placeholder
			}
			names[aux.Other] = name
		}
	}
	return names
}

var defaultResolver Resolver

func ResolveSymbols(t *obj.SymbolTable) []Symbol {
	return defaultResolver.ResolveSymbols(t)
}

func ResolveVersions(syms []Symbol, v *obj.VersionData) int {
	return defaultResolver.ResolveVersions(syms, v)
}
