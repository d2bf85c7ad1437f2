package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcolumn/internal/choices"
	"dcolumn/internal/core/apperror"
	"dcolumn/internal/domain/collection"
	"dcolumn/internal/domain/record"
	"dcolumn/internal/infrastructure/http/v1/middleware"
)

type fakeRenderer struct {
	known map[string]*record.DisplayContext
}

func (f *fakeRenderer) CollectionContext(_ context.Context, name string) (*record.DisplayContext, error) {
	if dc, ok := f.known[name]; ok {
		return dc, nil
	}
	return nil, apperror.NewCollectionMissing(name)
}

func (f *fakeRenderer) RecordContext(_ context.Context, host record.Host) (*record.DisplayContext, error) {
	return f.CollectionContext(context.Background(), host.HostType())
}

func newContextRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	relLanguage := 1
	renderer := &fakeRenderer{known: map[string]*record.DisplayContext{
		"Books": {
			ClassName: "Books",
			DynamicColumns: map[string][]choices.Option{
				"language": {{PK: 0, Label: "Choose a value"}, {PK: 1, Label: "Chinese"}},
			},
			Relations: map[string]collection.ColumnView{
				"1": {PK: 1, Name: "Language", Slug: "language", ValueType: 2, RelationID: &relLanguage, Widget: "select"},
			},
		},
	}}

	h := NewCollectionHandler(nil, renderer)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/collections/context/:name", h.Context)
	return router
}

func TestCollectionContextEndpoint(t *testing.T) {
	router := newContextRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/collections/context/Books", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Valid          bool                             `json:"valid"`
		ClassName      string                           `json:"class_name"`
		DynamicColumns map[string][]choices.Option      `json:"dynamicColumns"`
		Relations      map[string]collection.ColumnView `json:"relations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Valid)
	assert.Equal(t, "Books", body.ClassName)
	require.Len(t, body.DynamicColumns["language"], 2)
	assert.Equal(t, "Choose a value", body.DynamicColumns["language"][0].Label)
	require.Contains(t, body.Relations, "1")
	assert.Equal(t, "language", body.Relations["1"].Slug)
}

func TestCollectionContextEndpointUnknownCollection(t *testing.T) {
	router := newContextRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/collections/context/Nothing", nil)
	router.ServeHTTP(w, req)

	// Polling widgets expect a quiet 200 with valid=false.
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Valid)
	assert.NotEmpty(t, body.Message)
}
