package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyForwardsToAPIPath(t *testing.T) {
	var gotPath, gotQuery, gotAuth, gotBody, gotMethod string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	svc := NewProxyService(upstream.Client())
	resp, err := svc.Forward(context.Background(), upstream.URL, ProxyRequest{
		Method:        http.MethodPost,
		Path:          "/quotes?status=SENT",
		Body:          []byte(`{"a":1}`),
		Authorization: "Bearer abc",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/quotes", gotPath)
	assert.Equal(t, "status=SENT", gotQuery)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, `{"a":1}`, gotBody)
}

func TestProxyTargetRejectsEscapes(t *testing.T) {
	for _, path := range []string{
		"quotes",
		"//evil.example.com/x",
		"/proxy?path=/quotes",
		"/proxy",
		"@evil.example.com/",
	} {
		_, err := proxyTarget("http://localhost:8080", path)
		assert.ErrorIs(t, err, ErrProxyTarget, path)
	}

	target, err := proxyTarget("http://localhost:8080/", "/health")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/health", target)
}
