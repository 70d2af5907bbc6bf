package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/catalog-e2e/internal/api/middleware"
	"github.com/andresuchdata/catalog-e2e/internal/catalog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newStub(t *testing.T, f *Fixtures) (*StubServer, *Client) {
	t.Helper()
	stub := NewStubServer(f)
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)
	return stub, NewClient(srv.URL+CatalogPath, srv.URL+ProductsPath, 5*time.Second)
}

func TestClientFetchesCatalogAndProducts(t *testing.T) {
	_, client := newStub(t, &Fixtures{
		Catalog:  []catalog.OutputEntry{{ID: 1, Status: catalog.StatusComplete, Assets: []string{"a-product.png"}}},
		Products: []catalog.Product{{InputID: 1, Status: catalog.ProductComplete, Assets: []string{"a-product.png"}}},
	})
	ctx := context.Background()

	entries, err := client.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].ID)
	assert.Equal(t, catalog.StatusComplete, entries[0].Status)

	products, err := client.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 1, products[0].InputID)
	assert.Equal(t, []string{"a-product.png"}, products[0].Assets)
}

func TestStubServesEmptyArrays(t *testing.T) {
	stub, client := newStub(t, nil)

	entries, err := client.Catalog(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)

	stub.Set(Fixtures{Catalog: []catalog.OutputEntry{{ID: 9, Status: catalog.StatusFailed}}})
	entries, err = client.Catalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestClientErrors(t *testing.T) {
	router := gin.New()
	router.GET("/broken", func(c *gin.Context) { c.String(http.StatusBadGateway, "upstream down") })
	router.GET("/garbage", func(c *gin.Context) { c.String(http.StatusOK, "<html>") })
	srv := httptest.NewServer(router)
	defer srv.Close()

	client := NewClient(srv.URL+"/broken", srv.URL+"/garbage", 0)

	_, err := client.Catalog(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), srv.URL+"/broken")

	_, err = client.Products(context.Background())
	assert.Error(t, err)

	unreachable := NewClient("http://127.0.0.1:0/catalog", "", time.Second)
	_, err = unreachable.Catalog(context.Background())
	assert.Error(t, err)
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(middleware.Logger(), middleware.Recovery())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLoadFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"catalog": [{"id": 1, "status": "complete", "assets": ["a-product.png"]}],
		"products": [{"input_id": 1, "status": "complete", "assets": ["a-product.png"]}]
	}`), 0o644))

	f, err := LoadFixtures(path)
	require.NoError(t, err)
	assert.Len(t, f.Catalog, 1)
	assert.Equal(t, 1, f.Products[0].InputID)

	_, err = LoadFixtures(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
