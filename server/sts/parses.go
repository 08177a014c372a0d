package sts

import (
	"context"
	"errors"
	"fmt"

	"github.com/dekarrin/sentree/internal/grammar"
	"github.com/dekarrin/sentree/internal/parse"
	"github.com/dekarrin/sentree/internal/render"
	"github.com/dekarrin/sentree/server/dao"
	"github.com/dekarrin/sentree/server/serr"
	"github.com/google/uuid"
)

// MaxSamples is the most sentences a single call to Samples will generate.
const MaxSamples = 1000

// Parse parses sentence with the given mode and rendering style and stores the
// outcome. A sentence that cannot be parsed is not an error; its record holds
// the diagnostic instead of a tree.
//
// The returned error, if non-nil, will match serr.ErrDB if the record could
// not be stored.
func (svc Service) Parse(ctx context.Context, sentence string, mode parse.Mode, style render.Style) (dao.ParseRecord, error) {
	outcome := svc.Engine.ParseSentenceAs(ctx, sentence, mode, style)

	rec := dao.ParseRecord{
		Sentence: sentence,
		Mode:     mode,
		Style:    style,
		Status:   outcome.Status,
		End:      outcome.End,
		Rendered: outcome.Rendered,
		Tree:     outcome.Tree,
	}

	rec, err := svc.DB.Parses().Create(ctx, rec)
	if err != nil {
		return dao.ParseRecord{}, serr.WrapDB("could not store parse", err)
	}

	return rec, nil
}

// GetParse returns the stored parse with the given ID.
//
// The returned error, if non-nil, will match serr.ErrNotFound if there is no
// such parse, or serr.ErrDB if there was an unexpected problem with the DB.
func (svc Service) GetParse(ctx context.Context, id uuid.UUID) (dao.ParseRecord, error) {
	rec, err := svc.DB.Parses().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.ParseRecord{}, serr.ErrNotFound
		}
		return dao.ParseRecord{}, serr.WrapDB("could not get parse", err)
	}

	return rec, nil
}

// GetAllParses returns every stored parse, oldest first.
func (svc Service) GetAllParses(ctx context.Context) ([]dao.ParseRecord, error) {
	recs, err := svc.DB.Parses().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}

	return recs, nil
}

// DeleteParse removes the stored parse with the given ID and returns it.
//
// The returned error, if non-nil, will match serr.ErrNotFound if there is no
// such parse, or serr.ErrDB if there was an unexpected problem with the DB.
func (svc Service) DeleteParse(ctx context.Context, id uuid.UUID) (dao.ParseRecord, error) {
	rec, err := svc.DB.Parses().Delete(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.ParseRecord{}, serr.ErrNotFound
		}
		return dao.ParseRecord{}, serr.WrapDB("could not delete parse", err)
	}

	return rec, nil
}

// Samples generates count random sentences from the grammar. If seed is 0, the
// current time is used as the seed.
//
// The returned error, if non-nil, will match serr.ErrBadArgument if count is
// not between 1 and MaxSamples, or serr.ErrGenerate if the grammar could not
// produce a sentence.
func (svc Service) Samples(count int, seed int64) ([]string, error) {
	if count < 1 || count > MaxSamples {
		return nil, serr.New(fmt.Sprintf("count must be between 1 and %d", MaxSamples), serr.ErrBadArgument)
	}

	sentences, err := svc.Engine.Samples(count, seed)
	if err != nil {
		return nil, serr.New("", err, serr.ErrGenerate)
	}
	return sentences, nil
}

// Grammar returns the grammar that sentences are parsed with.
func (svc Service) Grammar() grammar.Grammar {
	return svc.Engine.Grammar()
}
