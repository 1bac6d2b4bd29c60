package debug

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/signadot/yamlprocessor/yp/encode"
	"github.com/signadot/yamlprocessor/yp/ir"
)

func Logf(msg string, args ...any) {
	for i := range args {
		switch x := args[i].(type) {
		case map[string]any, []any:
			d, err := json.MarshalIndent(x, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", x)
				continue
			}
			args[i] = string(d)
		case *ir.Node:
			args[i] = encode.MustString(x)
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
