package symtab

import (
	"fmt"

	"github.com/ianlancetaylor/demangle"
)

var (
	DemangleNone       []demangle.Option = nil
	DemangleSimplified                   = []demangle.Option{demangle.NoParams, demangle.NoEnclosingParams, demangle.NoTemplateParams}
	DemangleTemplates                    = []demangle.Option{demangle.NoParams, demangle.NoEnclosingParams}
	DemangleFull                         = []demangle.Option{demangle.NoClones}
)

// DemangleModes lists the values accepted by DemangleOptions.
var DemangleModes = []string{"none", "simplified", "templates", "full"}

func DemangleOptions(mode string) ([]demangle.Option, error) {
	switch mode {
	case "", "none":
		return DemangleNone, nil
	case "simplified":
		return DemangleSimplified, nil
	case "templates":
		return DemangleTemplates, nil
	case "full":
		return DemangleFull, nil
	}
	return nil, fmt.Errorf("unknown demangle mode %q", mode)
}
