package checkers

import (
	"github.com/dkoosis/puppetcheck/pkg/classify"
	"github.com/dkoosis/puppetcheck/pkg/dispatch"
)

// Registry wires the standard checker for every checked bucket. External
// tools are run through r; nil uses ExecRunner.
func Registry(r CommandRunner) dispatch.Registry {
	if r == nil {
		r = ExecRunner{}
	}
	return dispatch.Registry{
		classify.Manifest:             Manifest{Runner: r},
		classify.Template:             Template{Runner: r},
		classify.Script:               Script{Runner: r},
		classify.ScriptTemplate:       ScriptTemplate{Runner: r},
		classify.DataYAML:             YAML{},
		classify.DataJSON:             JSON{},
		classify.DependencyDescriptor: Librarian{Runner: r},
	}
}
