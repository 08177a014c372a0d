package sentree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dekarrin/rosed"
)

// GrammarTable returns a text table listing every non-terminal of the grammar
// with its alternatives, followed by a summary line.
func (eng *Engine) GrammarTable() string {
	data := [][]string{{"Non-terminal", "Alts", "Productions"}}

	for _, nt := range eng.g.NonTerminals() {
		prods := eng.g.Rules(nt)

		alts := make([]string, len(prods))
		for i := range prods {
			alts[i] = prods[i].String()
		}

		data = append(data, []string{nt, strconv.Itoa(len(prods)), strings.Join(alts, " | ")})
	}

	footer := fmt.Sprintf("%d non-terminals, %d terminals, %d productions; start symbol %q",
		eng.g.Len(), len(eng.g.Terminals()), eng.g.ProductionCount(), eng.g.Start())

	tableOpts := rosed.Options{
		TableHeaders: true,
	}

	return rosed.Edit("\n"+footer).
		InsertTableOpts(0, data, eng.cfg.Output.Width, tableOpts).
		String()
}
