package api

import (
	"net/http"

	"github.com/dekarrin/sentree/internal/version"
	"github.com/dekarrin/sentree/server/middle"
	"github.com/dekarrin/sentree/server/result"
)

// HTTPGetInfo returns a HandlerFunc that describes the server versions and
// the start symbol, mode, and style that parses default to. A logged-in
// client is also told which user it is logged in as.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	client := middle.ClientFrom(req.Context())
	eng := api.Backend.Engine

	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.Sentree = version.Current
	resp.Parser.Start = eng.Grammar().Start()
	resp.Parser.Mode = eng.Mode().String()
	resp.Parser.Style = eng.Style().String()
	if client.LoggedIn {
		resp.User = client.User.Username
	}

	return result.OK(resp, "%s got API info", client)
}
