// catalog-e2e/internal/api/api.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/catalog-e2e/internal/api/middleware"
	"github.com/andresuchdata/catalog-e2e/internal/catalog"
)

const (
	CatalogPath  = "/api/v1/catalog"
	ProductsPath = "/api/v1/products"
)

// Fixtures is the pipeline state a StubServer serves.
type Fixtures struct {
	Catalog  []catalog.OutputEntry `json:"catalog"`
	Products []catalog.Product     `json:"products"`
}

// LoadFixtures reads a {"catalog": [...], "products": [...]} document.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures %s: %w", path, err)
	}
	var f Fixtures
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding fixtures %s: %w", path, err)
	}
	return &f, nil
}

// StubServer stands in for the pipeline API when rehearsing the suites
// locally.
type StubServer struct {
	mu       sync.RWMutex
	fixtures Fixtures
}

func NewStubServer(f *Fixtures) *StubServer {
	s := &StubServer{}
	if f != nil {
		s.fixtures = *f
	}
	return s
}

// Set replaces the served state.
func (s *StubServer) Set(f Fixtures) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtures = f
}

// Router builds the gin engine serving the catalog and products endpoints.
func (s *StubServer) Router() *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Logger(),
		middleware.Recovery(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET(CatalogPath, s.getCatalog)
	router.GET(ProductsPath, s.getProducts)

	return router
}

func (s *StubServer) getCatalog(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.fixtures.Catalog
	if entries == nil {
		entries = []catalog.OutputEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *StubServer) getProducts(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := s.fixtures.Products
	if products == nil {
		products = []catalog.Product{}
	}
	c.JSON(http.StatusOK, products)
}
