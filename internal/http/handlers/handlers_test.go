package handlers

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	apierrors "github.com/pribylovaa/smilecook/internal/http/errors"
	"github.com/stretchr/testify/require"
)

func TestRequestURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/recipes?q=soup&page=3", nil)
	req.Host = "api.smilecook.test"

	require.Equal(t, "http://api.smilecook.test/recipes?q=soup&page=3", requestURL(req).String())

	req.TLS = &tls.ConnectionState{}
	require.Equal(t, "https", requestURL(req).Scheme)

	req.TLS = nil
	req.Header.Set("X-Forwarded-Proto", "https")
	require.Equal(t, "https", requestURL(req).Scheme)

	req.Header.Set("X-Forwarded-Proto", "gopher")
	require.Equal(t, "http", requestURL(req).Scheme)

	// исходный URL запроса не меняется.
	require.Empty(t, req.URL.Host)
}

func TestDecodeStrict(t *testing.T) {
	var in recipeRequest

	req := httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(`{"name":"Soup","cook_time":10}`))
	require.NoError(t, decodeStrict(req, &in))
	require.Equal(t, "Soup", *in.Name)
	require.Equal(t, 10, *in.CookTime)
	require.Nil(t, in.Description)

	for name, body := range map[string]string{
		"unknown field": `{"name":"Soup","price":10}`,
		"wrong type":    `{"cook_time":"ten"}`,
		"not json":      `name=Soup`,
		"empty":         ``,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(body))
			err := decodeStrict(req, &recipeRequest{})
			require.True(t, errors.Is(err, apierrors.ErrMalformedBody), err)
		})
	}
}

func TestPathID(t *testing.T) {
	id := uuid.New()

	withParam := func(v string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/recipes/"+v, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", v)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	got, err := pathID(withParam(id.String()), "id")
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = pathID(withParam("42"), "id")
	require.True(t, errors.Is(err, apierrors.ErrBadParam))
}
