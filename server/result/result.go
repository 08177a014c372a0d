// Package result contains results that are used to write out API responses.
package result

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse is the body of every JSON error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// internalMessage formats the optional internal message args given to a
// result constructor. If none are given, def is used.
func internalMessage(def string, internalMsg []interface{}) (string, []interface{}) {
	if len(internalMsg) < 1 {
		return def, nil
	}
	return internalMsg[0].(string), internalMsg[1:]
}

// OK returns a Result containing an HTTP-200 along with a more detailed
// message (if desired; if none is provided it defaults to a generic one) that
// is not displayed to the user.
func OK(respObj interface{}, internalMsg ...interface{}) Result {
	msgFmt, args := internalMessage("OK", internalMsg)
	return Response(http.StatusOK, respObj, msgFmt, args...)
}

// NoContent returns a Result containing an HTTP-204 along with a more detailed
// message (if desired; if none is provided it defaults to a generic one) that
// is not displayed to the user.
func NoContent(internalMsg ...interface{}) Result {
	msgFmt, args := internalMessage("no content", internalMsg)
	return Response(http.StatusNoContent, nil, msgFmt, args...)
}

// Created returns a Result containing an HTTP-201 along with a more detailed
// message (if desired; if none is provided it defaults to a generic one) that
// is not displayed to the user.
func Created(respObj interface{}, internalMsg ...interface{}) Result {
	msgFmt, args := internalMessage("created", internalMsg)
	return Response(http.StatusCreated, respObj, msgFmt, args...)
}

// BadRequest returns a Result containing an HTTP-400 along with a more
// detailed message (if desired; if none is provided it defaults to a generic
// one) that is not displayed to the user.
func BadRequest(userMsg string, internalMsg ...interface{}) Result {
	msgFmt, args := internalMessage("bad request", internalMsg)
	return Err(http.StatusBadRequest, userMsg, msgFmt, args...)
}

// MethodNotAllowed returns a Result containing an HTTP-405 along with a more
// detailed message (if desired; if none is provided it defaults to a generic
// one) that is not displayed to the user.
func MethodNotAllowed(req *http.Request, internalMsg ...interface{}) Result {
	msgFmt, args := internalMessage("method not allowed", internalMsg)
	userMsg := fmt.Sprintf("Method %s is not allowed for %s", req.Method, req.URL.Path)
	return Err(http.StatusMethodNotAllowed, userMsg, msgFmt, args...)
}

// NotFound returns a Result containing an HTTP-404 response along with a more
// detailed message (if desired; if none is provided it defaults to a generic
// one) that is not displayed to the user.
func NotFound(internalMsg ...interface{}) Result {
	msgFmt, args := internalMessage("not found", internalMsg)
	return Err(http.StatusNotFound, "The requested resource was not found", msgFmt, args...)
}

// Unauthorized returns an HTTP-401 Result that asks for a bearer token. An
// empty userMsg gets a generic one.
func Unauthorized(userMsg string, internalMsg ...interface{}) Result {
	msgFmt, args := internalMessage("unauthorized", internalMsg)
	if userMsg == "" {
		userMsg = "You are not authorized to do that"
	}

	return Err(http.StatusUnauthorized, userMsg, msgFmt, args...).
		WithHeader("WWW-Authenticate", `Bearer realm="sentree server", charset="utf-8"`)
}

// InternalServerError returns a Result containing an HTTP-500 response along
// with a more detailed message that is not displayed to the user. If
// internalMsg is provided the first argument must be a string that is the
// format string and any subsequent args are passed to Sprintf with the first
// as the format string.
func InternalServerError(internalMsg ...interface{}) Result {
	msgFmt, args := internalMessage("internal server error", internalMsg)
	return Err(http.StatusInternalServerError, "An internal server error occurred", msgFmt, args...)
}

// Response returns a non-error Result. If status is http.StatusNoContent,
// respObj will not be read and may be nil. Otherwise, respObj MUST NOT be nil.
// If additional values are provided they are given to internalMsg as a format
// string.
func Response(status int, respObj interface{}, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        respObj,
	}
}

// Err returns an error Result whose body is an ErrorResponse. If additional
// values are provided they are given to internalMsg as a format string.
func Err(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp: ErrorResponse{
			Error:  userMsg,
			Status: status,
		},
	}
}

// TextErr is like Err but it avoids JSON encoding of any kind and writes the
// output as plain text. If additional values are provided they are given to
// internalMsg as a format string.
func TextErr(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        userMsg,
	}
}

// Result is a response that is ready to be written to a client.
type Result struct {
	Status      int
	IsErr       bool
	IsJSON      bool
	InternalMsg string

	resp interface{}
	hdrs [][2]string

	// set by calling PrepareMarshaledResponse.
	respJSONBytes []byte
}

// WithHeader returns a copy of r that also sets the given header.
func (r Result) WithHeader(name, val string) Result {
	erCopy := r
	erCopy.hdrs = make([][2]string, len(r.hdrs), len(r.hdrs)+1)
	copy(erCopy.hdrs, r.hdrs)
	erCopy.hdrs = append(erCopy.hdrs, [2]string{name, val})
	return erCopy
}

// PrepareMarshaledResponse sets the respJSONBytes to the marshaled version of
// the response if required. If required, and there is a problem marshaling, an
// error is returned. If not required, nil error is always returned.
func (r *Result) PrepareMarshaledResponse() error {
	if r.respJSONBytes != nil {
		return nil
	}

	if r.IsJSON && r.Status != http.StatusNoContent {
		var err error
		r.respJSONBytes, err = json.Marshal(r.resp)
		if err != nil {
			return err
		}
	}

	return nil
}

// WriteResponse writes r to w. It panics if r was never populated or cannot be
// marshaled; call PrepareMarshaledResponse first to check for the latter.
func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}

	err := r.PrepareMarshaledResponse()
	if err != nil {
		panic(fmt.Sprintf("could not marshal response: %s", err.Error()))
	}

	var respBytes []byte

	if r.IsJSON {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		respBytes = r.respJSONBytes
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if r.Status != http.StatusNoContent {
			respBytes = []byte(fmt.Sprintf("%v", r.resp))
		}
	}

	for i := range r.hdrs {
		w.Header().Set(r.hdrs[i][0], r.hdrs[i][1])
	}

	w.WriteHeader(r.Status)

	if r.Status != http.StatusNoContent {
		w.Write(respBytes)
	}
}
