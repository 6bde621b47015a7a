package tool

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/hupe1980/agentswarm/core"
)

// Transfer returns a zero-argument function that hands the conversation off
// to target when the model calls it.
func Transfer(name, description string, target *core.Agent) *FunctionTool {
	return NewFunction(name, description, nil, func(context.Context, core.Args) (any, error) {
		return target, nil
	})
}

// TransferTo is Transfer with a name derived from the target agent, e.g.
// "Spanish Agent" becomes transfer_to_spanish_agent.
func TransferTo(target *core.Agent) *FunctionTool {
	return Transfer(
		"transfer_to_"+snakeCase(target.Name),
		fmt.Sprintf("Transfer the conversation to %s.", target.Name),
		target,
	)
}

func snakeCase(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			underscore = false
		case !underscore && b.Len() > 0:
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
