package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

func newTestClient(t *testing.T, tokens TokenSource, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, tokens)
	require.NoError(t, err)
	return c
}

func TestGet_AttachesBearerToken(t *testing.T) {
	var got http.Header
	c := newTestClient(t, staticToken("tok"), func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		assert.Equal(t, "/api/v1/recipes", r.URL.Path)
		w.Write([]byte(`{"recipes":[]}`))
	})

	resp, err := c.Get(context.Background(), "/api/v1/recipes", Authenticated)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bearer tok", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Empty(t, got.Get("Content-Type"))
}

func TestGet_NoTokenNoHeader(t *testing.T) {
	var got http.Header
	c := newTestClient(t, staticToken(""), func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	})

	_, err := c.Get(context.Background(), "/api/v1/recipes", Authenticated)
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
}

func TestPost_AnonymousSkipsToken(t *testing.T) {
	var got http.Header
	var body map[string]string
	c := newTestClient(t, staticToken("tok"), func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
	})

	_, err := c.Post(context.Background(), "/api/v1/users/login", map[string]string{"login": "cook"}, Anonymous)
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "cook", body["login"])
}

func TestOnlyStatusOKSucceeds(t *testing.T) {
	for _, status := range []int{
		http.StatusCreated,
		http.StatusNoContent,
		http.StatusFound,
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusNotFound,
		http.StatusInternalServerError,
	} {
		c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
			if status == http.StatusFound {
				w.Header().Set("Location", "/elsewhere")
			}
			w.WriteHeader(status)
			w.Write([]byte(`{"errors":{"name":"Required"}}`))
		})

		_, err := c.Get(context.Background(), "/api/v1/recipes", Authenticated)
		require.Error(t, err, "status %d", status)

		terr, ok := AsError(err)
		require.True(t, ok)
		assert.True(t, terr.HasResponse())
		assert.Equal(t, status, terr.StatusCode)
		assert.Equal(t, status == http.StatusUnauthorized, terr.Unauthorized())
	}
}

func TestErrorCarriesBody(t *testing.T) {
	c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":"some-error"}`))
	})

	_, err := c.Post(context.Background(), "/api/v1/recipes", struct{}{}, Authenticated)
	terr, ok := AsError(err)
	require.True(t, ok)

	assert.Equal(t, "request failed with status code 404", terr.Error())
	assert.Equal(t, "some-error", terr.ValidationErrors().Form())
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(url, nil)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/api/v1/recipes", Authenticated)
	terr, ok := AsError(err)
	require.True(t, ok)
	assert.False(t, terr.HasResponse())
	assert.False(t, terr.Unauthorized())
	assert.Nil(t, terr.ValidationErrors())
	assert.NotNil(t, errors.Unwrap(terr))
}

func TestValidationErrors_AbsentOrNotJSON(t *testing.T) {
	cases := map[string]*Error{
		"no body":     {StatusCode: 400},
		"not json":    {StatusCode: 400, Body: []byte("<html>")},
		"no errors":   {StatusCode: 400, Body: []byte(`{"message":"nope"}`)},
		"empty error": {StatusCode: 400, Body: []byte(`{"errors":{}}`)},
	}
	for name, e := range cases {
		assert.Nil(t, e.ValidationErrors(), name)
	}
}

func TestIsUnauthorized_Wrapped(t *testing.T) {
	err := &Error{StatusCode: http.StatusUnauthorized}
	wrapped := errors.Join(errors.New("list recipes"), err)

	assert.True(t, IsUnauthorized(wrapped))
	assert.False(t, IsUnauthorized(errors.New("plain")))
}

func TestResponseDecode(t *testing.T) {
	var v struct {
		ID int64 `json:"recipe_id"`
	}
	require.NoError(t, (&Response{Body: []byte(`{"recipe_id":3}`)}).Decode(&v))
	assert.Equal(t, int64(3), v.ID)

	assert.ErrorIs(t, (&Response{}).Decode(&v), ErrEmptyBody)
	assert.Error(t, (&Response{Body: []byte("{")}).Decode(&v))
}

func TestResolveAbsoluteURL(t *testing.T) {
	c := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/other", r.URL.Path)
	})
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/absolute", r.URL.Path)
	}))
	defer other.Close()

	_, err := c.Get(context.Background(), other.URL+"/absolute", Anonymous)
	require.NoError(t, err)
}
