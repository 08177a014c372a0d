package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/sentree/server/api"
	"github.com/dekarrin/sentree/server/middle"
	"github.com/dekarrin/sentree/server/result"
	"github.com/go-chi/chi/v5"
)

var (
	paramTypePats = map[string]string{
		"uuid": "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}",
	}
)

// p is a quick parameter in a URI, made very small to ease readability in route
// listings.
func p(nameType string) string {
	var name string
	var pat string

	parts := strings.SplitN(nameType, ":", 2)
	name = parts[0]
	if len(parts) == 2 {
		// we have a type, if it's a name in the paramTypePats map use that else
		// treat it as a normal pattern
		pat = parts[1]

		if translatedPat, ok := paramTypePats[parts[1]]; ok {
			pat = translatedPat
		}
	}

	if pat == "" {
		return "{" + name + "}"
	}
	return "{" + name + ":" + pat + "}"
}

func newRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Mount(api.PathPrefix, newAPIRouter(a))

	return r
}

func newAPIRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Mount("/login", newLoginRouter(a))
	r.Mount("/tokens", newTokensRouter(a))
	r.Mount("/parses", newParsesRouter(a))
	r.Mount("/samples", newSamplesRouter(a))
	r.Mount("/grammar", newGrammarRouter(a))
	r.Mount("/info", newInfoRouter(a))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		result.NotFound().WriteResponse(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(a.UnauthDelay)
		result.MethodNotAllowed(req).WriteResponse(w)
	})

	return r
}

func requireAuth(a api.API) middle.Middleware {
	return authFor(a).Required()
}

func optionalAuth(a api.API) middle.Middleware {
	return authFor(a).Optional()
}

func authFor(a api.API) middle.Auth {
	return middle.Auth{Users: a.Backend.DB.Users(), Secret: a.Secret, Delay: a.UnauthDelay}
}

func newLoginRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Post("/", a.HTTPCreateLogin())
	r.With(requireAuth(a)).Delete("/", a.HTTPDeleteLogin())

	return r
}

func newTokensRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.With(requireAuth(a)).Post("/", a.HTTPCreateToken())

	return r
}

func newParsesRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Get("/", a.HTTPGetAllParses())
	r.Post("/", a.HTTPCreateParse())

	r.Route("/"+p("id:uuid"), func(r chi.Router) {
		r.Get("/", a.HTTPGetParse())
		r.With(requireAuth(a)).Delete("/", a.HTTPDeleteParse())
	})

	return r
}

func newSamplesRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Post("/", a.HTTPCreateSamples())

	return r
}

func newGrammarRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Get("/", a.HTTPGetGrammar())

	return r
}

func newInfoRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.With(optionalAuth(a)).Get("/", a.HTTPGetInfo())

	return r
}
