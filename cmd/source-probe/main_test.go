package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"moviehub/pkg/models"
)

func TestReportPostsToIngestEndpoint(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotBody   outcome
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(models.SourceHealth{
			SourceName:  "hdhub4u",
			IsEnabled:   true,
			SuccessRate: 0.5,
		})
	}))
	defer srv.Close()

	st, err := report(srv.Client(), srv.URL, "hdhub4u", outcome{Success: true, LatencyMs: 120})
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/admin/sources/hdhub4u/report", gotPath)
	require.True(t, gotBody.Success)
	require.Equal(t, 120.0, gotBody.LatencyMs)
	require.True(t, st.IsEnabled)
	require.Equal(t, 0.5, st.SuccessRate)
}

func TestReportSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := report(srv.Client(), srv.URL, "hdhub4u", outcome{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 400")
}
