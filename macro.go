package bibdoc

import (
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var monthMacros = map[string]string{
	"jan": "January",
	"feb": "February",
	"mar": "March",
	"apr": "April",
	"may": "May",
	"jun": "June",
	"jul": "July",
	"aug": "August",
	"sep": "September",
	"oct": "October",
	"nov": "November",
	"dec": "December",
}

// MacroTable holds @string definitions. Names are case-insensitive and a
// macro may only refer to macros defined before it.
type MacroTable struct {
	defs map[string]string
	log  logrus.FieldLogger
}

// NewMacroTable returns a table pre-seeded with the month abbreviations
// jan..dec.
func NewMacroTable() *MacroTable {
	return &MacroTable{defs: lo.Assign(monthMacros), log: discardLogger()}
}

// Define resolves pieces against the current table and stores the result
// under name. Redefinition replaces the previous value.
func (mt *MacroTable) Define(name string, pieces []Piece) error {
	value, err := mt.Resolve(pieces)
	if err != nil {
		return err
	}
	mt.set(name, value)
	return nil
}

func (mt *MacroTable) set(name, value string) {
	name = strings.ToLower(name)
	if old, ok := mt.defs[name]; ok && old != value {
		mt.log.WithField("macro", name).Debug("macro redefined")
	}
	mt.defs[name] = value
}

// Resolve concatenates literal pieces and substitutes macro references.
func (mt *MacroTable) Resolve(pieces []Piece) (string, error) {
	if len(pieces) == 1 && pieces[0].Kind == PieceLiteral {
		return pieces[0].Text, nil
	}
	var sb strings.Builder
	for _, p := range pieces {
		if p.Kind == PieceLiteral {
			sb.WriteString(p.Text)
			continue
		}
		v, ok := mt.defs[p.Text]
		if !ok {
			return "", newParseError(ErrUnknownMacro, p.Offset, "%q is not defined", p.Text)
		}
		sb.WriteString(v)
	}
	return sb.String(), nil
}

// Lookup returns the value of a macro.
func (mt *MacroTable) Lookup(name string) (string, bool) {
	v, ok := mt.defs[strings.ToLower(name)]
	return v, ok
}

// Names returns all defined macro names in sorted order.
func (mt *MacroTable) Names() []string {
	names := lo.Keys(mt.defs)
	slices.Sort(names)
	return names
}
