package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/dekarrin/sentree/internal/parse"
	"github.com/dekarrin/sentree/internal/render"
	"github.com/dekarrin/sentree/server/dao"
	"github.com/dekarrin/sentree/server/middle"
	"github.com/dekarrin/sentree/server/result"
	"github.com/dekarrin/sentree/server/serr"
)

// HTTPCreateParse returns a HandlerFunc that parses the sentence in the
// request, stores the outcome, and responds with it.
func (api API) HTTPCreateParse() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateParse)
}

func (api API) epCreateParse(req *http.Request) result.Result {
	parseData := ParseRequest{}
	err := parseJSON(req, &parseData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	mode := api.Backend.Engine.Mode()
	if parseData.Mode != "" {
		mode, err = parse.ParseMode(parseData.Mode)
		if err != nil {
			return result.BadRequest("mode: "+err.Error(), "bad mode %q", parseData.Mode)
		}
	}

	style := api.Backend.Engine.Style()
	if parseData.Style != "" {
		style, err = render.ParseStyle(parseData.Style)
		if err != nil {
			return result.BadRequest("style: "+err.Error(), "bad style %q", parseData.Style)
		}
	}

	rec, err := api.Backend.Parse(req.Context(), parseData.Sentence, mode, style)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	return result.Created(daoToParseModel(rec), "parse %s created with status %s", rec.ID, rec.Status)
}

// HTTPGetAllParses returns a HandlerFunc that retrieves every stored parse.
func (api API) HTTPGetAllParses() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetAllParses)
}

func (api API) epGetAllParses(req *http.Request) result.Result {
	recs, err := api.Backend.GetAllParses(req.Context())
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]ParseModel, len(recs))
	for i := range recs {
		resp[i] = daoToParseModel(recs[i])
	}

	return result.OK(resp, "got all parses")
}

// HTTPGetParse returns a HandlerFunc that retrieves one stored parse.
func (api API) HTTPGetParse() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetParse)
}

func (api API) epGetParse(req *http.Request) result.Result {
	id := requireIDParam(req)

	rec, err := api.Backend.GetParse(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not get parse: " + err.Error())
	}

	return result.OK(daoToParseModel(rec), "got parse %s", id)
}

// HTTPDeleteParse returns a HandlerFunc that removes a stored parse. It must
// be behind middleware that requires auth.
func (api API) HTTPDeleteParse() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteParse)
}

func (api API) epDeleteParse(req *http.Request) result.Result {
	id := requireIDParam(req)
	client := middle.ClientFrom(req.Context())
	if !client.LoggedIn {
		return result.Unauthorized("", "parse delete reached without auth")
	}

	_, err := api.Backend.DeleteParse(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not delete parse: " + err.Error())
	}

	return result.NoContent("%s deleted parse %s", client, id)
}

func daoToParseModel(rec dao.ParseRecord) ParseModel {
	return ParseModel{
		URI:      PathPrefix + "/parses/" + rec.ID.String(),
		ID:       rec.ID.String(),
		Sentence: rec.Sentence,
		Mode:     rec.Mode.String(),
		Style:    rec.Style.String(),
		Status:   rec.Status.String(),
		End:      rec.End,
		Rendered: rec.Rendered,
		Tree:     nodeToTreeModel(rec.Tree),
		Created:  rec.Created.Format(time.RFC3339),
	}
}

func nodeToTreeModel(n *parse.Node) *TreeModel {
	if n == nil {
		return nil
	}

	tm := &TreeModel{
		Label:    n.Label,
		Terminal: n.Terminal,
	}
	if len(n.Children) > 0 {
		tm.Children = make([]TreeModel, len(n.Children))
		for i := range n.Children {
			tm.Children[i] = *nodeToTreeModel(n.Children[i])
		}
	}
	return tm
}
