// Package pathmancli implements the "pathman" CLI front-end: a chain of
// path-manipulation commands applied left-to-right over a starting path.
package pathmancli

import (
	"github.com/vanandrew/gomemori/internal/merr"
	"github.com/vanandrew/gomemori/internal/pathutil"
)

var commandsWithArg = map[string]bool{
	"append-suffix":  true,
	"replace-suffix": true,
	"repath":         true,
}

// ParseChain turns a flat token stream (as it arrives from the command
// line, after the starting path) into a []pathutil.Command. Commands that
// take an argument (append-suffix, replace-suffix, repath) consume the
// following token; all others take none.
func ParseChain(tokens []string) ([]pathutil.Command, error) {
	var cmds []pathutil.Command
	for i := 0; i < len(tokens); i++ {
		name := tokens[i]
		cmd := pathutil.Command{Name: name}
		if commandsWithArg[name] {
			i++
			if i >= len(tokens) {
				return nil, merr.Validation("command "+name+" requires an argument", nil)
			}
			cmd.Arg = tokens[i]
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}
