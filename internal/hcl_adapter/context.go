package hcl_adapter

import (
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// envFunc exposes env("NAME") to workspace attribute expressions. Unset
// variables evaluate to "".
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{{Name: "name", Type: cty.String}},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

// evalContext is the static context every attribute expression is
// evaluated against. workspace.dir is the declaring file's directory and
// therefore differs per file; everything else is fixed for the run.
func (l *Loader) evalContext(root, fileDir string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"workspace": cty.ObjectVal(map[string]cty.Value{
				"root": cty.StringVal(root),
				"dir":  cty.StringVal(fileDir),
			}),
			"platform": cty.ObjectVal(map[string]cty.Value{
				"os":     cty.StringVal(l.platform.OS()),
				"arch":   cty.StringVal(l.arch),
				"triple": cty.StringVal(l.platform.Triple(l.arch)),
			}),
		},
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}
}
