//go:build e2e

package e2e

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/andresuchdata/catalog-e2e/internal/cleanup"
	"github.com/andresuchdata/catalog-e2e/internal/validator"
)

// FunctionalSuite loads the pipeline state once and asserts each invariant
// in its own test, so one failing invariant does not hide the others.
type FunctionalSuite struct {
	suite.Suite
	env   *liveEnv
	state *validator.State
}

func (s *FunctionalSuite) SetupSuite() {
	s.env = newLiveEnv(s.T())

	v := validator.New(s.env.manifest, s.env.api, s.env.cfg.Expected)
	state, err := v.Load(context.Background())
	s.Require().NoError(err)
	s.state = state
}

func (s *FunctionalSuite) TearDownSuite() {
	if s.env == nil {
		return
	}
	c := cleanup.New(s.env.manifest, s.env.store, s.env.cfg.Inputs.BucketName, s.env.cfg.Inputs.Prefix)
	_, err := c.Run(context.Background())
	s.Require().NoError(err)
}

func (s *FunctionalSuite) TestCatalogSize() {
	s.NoError(validator.CheckCatalogSize(s.state))
}

func (s *FunctionalSuite) TestCatalogStatus() {
	s.NoError(validator.CheckCatalogStatus(s.state))
}

func (s *FunctionalSuite) TestProductsSize() {
	s.NoError(validator.CheckProductsSize(s.state))
}

func (s *FunctionalSuite) TestProductStatus() {
	s.NoError(validator.CheckProductStatus(s.state))
}

func (s *FunctionalSuite) TestProductImageAssets() {
	s.NoError(validator.CheckProductImageAssets(s.state))
}

func (s *FunctionalSuite) TestProductMetadataAssets() {
	s.NoError(validator.CheckProductMetadataAssets(s.state))
}

func TestFunctional(t *testing.T) {
	suite.Run(t, new(FunctionalSuite))
}
