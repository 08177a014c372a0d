package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/sentree/server/result"
	"github.com/dekarrin/sentree/server/serr"
)

// HTTPCreateSamples returns a HandlerFunc that generates random sentences from
// the grammar.
func (api API) HTTPCreateSamples() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateSamples)
}

func (api API) epCreateSamples(req *http.Request) result.Result {
	samplesData := SamplesRequest{}
	err := parseJSON(req, &samplesData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	sentences, err := api.Backend.Samples(samplesData.Count, samplesData.Seed)
	if err != nil {
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest("count: "+err.Error(), "bad count %d", samplesData.Count)
		}
		return result.InternalServerError(err.Error())
	}

	return result.Created(SamplesResponse{Sentences: sentences}, "generated %d sentences", len(sentences))
}
