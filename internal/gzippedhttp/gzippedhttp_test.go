package gzippedhttp

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gunzip(t *testing.T, data []byte) []byte {
	t.Helper()

	reader, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer reader.Close()

	plain, err := io.ReadAll(reader)
	require.NoError(t, err)

	return plain
}

func TestGzipResponseCompressesSuccessBody(t *testing.T) {
	handler := GzipResponse(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		response.Header().Set("Content-Type", "application/json")
		response.WriteHeader(http.StatusOK)
		_, _ = response.Write([]byte(`{"status":"ok"}`))
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Accept-Encoding", "gzip")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
	assert.JSONEq(t, `{"status":"ok"}`, string(gunzip(t, recorder.Body.Bytes())))
}

func TestGzipResponseLabelsErrorBody(t *testing.T) {
	// Error bodies travel through the gzip writer like any other body,
	// so they must be labeled as gzip or clients cannot decode the
	// {"error": ...} payload.
	handler := GzipResponse(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		response.Header().Set("Content-Type", "application/json")
		response.WriteHeader(http.StatusNotFound)
		_, _ = response.Write([]byte(`{"error":"Job not found"}`))
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Accept-Encoding", "gzip")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))

	decoded := map[string]string{}
	require.NoError(t, json.Unmarshal(gunzip(t, recorder.Body.Bytes()), &decoded))
	assert.Equal(t, "Job not found", decoded["error"])
}

func TestGzipResponseSkipsClientsWithoutGzip(t *testing.T) {
	handler := GzipResponse(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		_, _ = response.Write([]byte(`{"status":"ok"}`))
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Empty(t, recorder.Header().Get("Content-Encoding"))
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestUngzipRequest(t *testing.T) {
	var received []byte
	handler := UngzipRequest(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		body, err := io.ReadAll(request.Body)
		require.NoError(t, err)
		received = body
	}))

	var compressed bytes.Buffer
	writer := gzip.NewWriter(&compressed)
	_, err := writer.Write([]byte(`{"company":"Acme"}`))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	request := httptest.NewRequest(http.MethodPost, "/", &compressed)
	request.Header.Set("Content-Encoding", "gzip")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.JSONEq(t, `{"company":"Acme"}`, string(received))
}

func TestUngzipRequestRejectsCorruptBody(t *testing.T) {
	handler := UngzipRequest(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	request := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("not gzip")))
	request.Header.Set("Content-Encoding", "gzip")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
