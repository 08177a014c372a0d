package api

import (
	"net/http"

	"github.com/dekarrin/sentree/server/result"
)

// HTTPGetGrammar returns a HandlerFunc that retrieves the grammar sentences
// are parsed with.
func (api API) HTTPGetGrammar() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetGrammar)
}

func (api API) epGetGrammar(req *http.Request) result.Result {
	g := api.Backend.Grammar()

	resp := GrammarModel{
		Start:        g.Start(),
		NonTerminals: len(g.NonTerminals()),
		Terminals:    len(g.Terminals()),
		Productions:  g.ProductionCount(),
		Source:       g.String(),
	}
	return result.OK(resp, "got grammar")
}
