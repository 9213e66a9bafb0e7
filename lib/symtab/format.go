package symtab

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ii64/dt/lib/obj"
)

// Column layout of the symbol listing. The header and row formats must keep
// the same widths.
const (
	tableTitle   = "Symbol table '%s' contains %d entries:\n"
	headerFormat = "%3s: %6s %15s %-8s %-6s %-8s %4s %-4s\n"
	rowFormat    = "%3d: %016x %5d %-8s %-6s %8s %4s %-4s\n"
)

// WriteTable renders syms readelf style under the given section name. It
// writes nothing for an empty slice.
func WriteTable(w io.Writer, name string, syms []Symbol) error {
	if len(syms) == 0 {
		return nil
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, tableTitle, name, len(syms))
	fmt.Fprintf(bw, headerFormat, "Num", "Value", "Size", "Type", "Bind", "Vis", "Ndx", "Name")
	for i, s := range syms {
		fmt.Fprintf(bw, rowFormat,
			i,
			s.Value,
			s.Size,
			s.TypeString(),
			s.BindString(),
			s.VisibilityString(),
			s.Section,
			s.DisplayName(),
		)
	}
	return bw.Flush()
}

// WriteVersionNeeds lists the .gnu.version_r records, one row per auxiliary
// entry. It writes nothing when the binary has none.
func WriteVersionNeeds(w io.Writer, v *obj.VersionData) error {
	if !v.Present() || len(v.Needs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Version needs section '.gnu.version_r' contains %d entries:\n", len(v.Needs)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Cnt", "Name", "Hash", "Flags", "Version"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, need := range v.Needs {
		file := lookupOr(v.Strings, need.File)
		cnt := strconv.Itoa(len(need.Aux))
		if len(need.Aux) == 0 {
			table.Append([]string{file, cnt, "", "", "", ""})
			continue
		}
		for j, aux := range need.Aux {
			if j > 0 {
				file, cnt = "", ""
			}
			table.Append([]string{
				file,
				cnt,
				lookupOr(v.Strings, aux.Name),
				fmt.Sprintf("0x%08x", aux.Hash),
				versionFlags(aux.Flags),
				strconv.Itoa(int(aux.Other)),
			})
		}
	}
	table.Render()
	return nil
}

func lookupOr(t obj.StringTable, off uint32) string {
	if s, ok := t.Lookup(off); ok {
		return s
	}
	return Placeholder
}

const (
	verFlagBase = 0x1
	verFlagWeak = 0x2
	verFlagInfo = 0x4
)

func versionFlags(f uint16) string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f&verFlagBase != 0 {
		parts = append(parts, "BASE")
	}
	if f&verFlagWeak != 0 {
		parts = append(parts, "WEAK")
	}
	if f&verFlagInfo != 0 {
		parts = append(parts, "INFO")
	}
	if rest := f &^ (verFlagBase | verFlagWeak | verFlagInfo); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", rest))
	}
	return strings.Join(parts, " | ")
}
