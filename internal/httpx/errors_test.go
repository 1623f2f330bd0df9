package httpx

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	e := NewAppError(http.StatusConflict, CodeBidRejected, "bid rejected", nil)
	if !strings.Contains(e.Error(), "bid rejected") {
		t.Errorf("Error() = %q", e.Error())
	}

	e = NewAppError(http.StatusInternalServerError, CodeDatabaseError, "database error", errors.New("boom"))
	if !strings.Contains(e.Error(), "boom") {
		t.Errorf("internal error must appear in Error(): %q", e.Error())
	}
}

func TestErrorConstructors(t *testing.T) {
	cases := []struct {
		err        *AppError
		httpStatus int
		code       int
	}{
		{ErrUnauthorized(""), http.StatusUnauthorized, CodeUnauthorized},
		{ErrInvalidToken(""), http.StatusUnauthorized, CodeInvalidToken},
		{ErrForbidden(""), http.StatusForbidden, CodeForbidden},
		{ErrLockedOut(""), http.StatusTooManyRequests, CodeLockedOut},
		{ErrParamMissing(""), http.StatusBadRequest, CodeParamMissing},
		{ErrNotFound(""), http.StatusNotFound, CodeNotFound},
		{ErrAlreadyExists(""), http.StatusConflict, CodeAlreadyExists},
		{ErrBidRejected(""), http.StatusConflict, CodeBidRejected},
		{ErrInternalError("", nil), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tc := range cases {
		if tc.err.HTTPStatus != tc.httpStatus || tc.err.Code != tc.code {
			t.Errorf("constructor mismatch: %+v", tc.err)
		}
		if tc.err.Message == "" {
			t.Errorf("default message missing for code %d", tc.code)
		}
	}
}

func TestWithData(t *testing.T) {
	e := ErrBidRejected("too low").WithData(map[string]interface{}{"minimum": "HK$100.00"})
	if e.Data == nil {
		t.Error("WithData must attach the payload")
	}
}
