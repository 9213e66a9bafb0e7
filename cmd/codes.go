package cmd

// Code is the process exit status.
type Code int

const (
	Success    Code = 0
	MissingArg Code = -1
	BadArg     Code = -2
	IoReadFail Code = -3
	ElfParse   Code = -4
)

func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case MissingArg:
		return "missing argument"
	case BadArg:
		return "bad argument"
	case IoReadFail:
		return "read failure"
	case ElfParse:
		return "ELF parse failure"
	}
	return "unknown"
}
