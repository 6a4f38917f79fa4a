package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type layoutReq struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
	Limit  int     `json:"limit" default:"10" validate:"min=1,max=100"`
}

func TestReadAndValidateRequestAppliesDefaults(t *testing.T) {
	e := echo.New()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"width":800,"height":600}`))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(r, httptest.NewRecorder())

	req := &layoutReq{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		t.Fatalf("unexpected validation error %+v", verr)
	}
	if req.Limit != 10 {
		t.Fatalf("expected default limit, got %d", req.Limit)
	}
}

func TestReadAndValidateRequestReportsWireNames(t *testing.T) {
	e := echo.New()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"width":0,"height":600}`))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(r, httptest.NewRecorder())

	verr := ReadAndValidateRequest(c, &layoutReq{})
	errs, ok := verr.([]ValidationError)
	if !ok || len(errs) != 1 {
		t.Fatalf("expected one validation error, got %+v", verr)
	}
	if errs[0].Field != "width" || errs[0].Code != "ERR_GT" {
		t.Fatalf("unexpected error %+v", errs[0])
	}
}

type assetReq struct {
	ID string `param:"id" validate:"required,assetid"`
}

func TestAssetIDValidation(t *testing.T) {
	for id, ok := range map[string]bool{
		"bitcoin":      true,
		"usd-coin":     true,
		"wrapped.eth2": true,
		"Bitcoin":      false,
		"-btc":         false,
		"btc coin":     false,
	} {
		verr := ValidateStruct(context.Background(), &assetReq{ID: id})
		if (verr == nil) != ok {
			t.Fatalf("id %q: expected valid=%v, got %+v", id, ok, verr)
		}
		if !ok {
			errs := verr.([]ValidationError)
			if errs[0].Field != "id" || errs[0].Code != "ERR_ASSETID" {
				t.Fatalf("id %q: unexpected error %+v", id, errs[0])
			}
		}
	}
}
