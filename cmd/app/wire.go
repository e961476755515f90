//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/astro-profile/internal/bootstrap"
	"github.com/yanqian/astro-profile/internal/domain/auth"
	"github.com/yanqian/astro-profile/internal/domain/geo"
	"github.com/yanqian/astro-profile/internal/domain/natal"
	"github.com/yanqian/astro-profile/internal/domain/profiles"
	"github.com/yanqian/astro-profile/internal/domain/synastry"
	"github.com/yanqian/astro-profile/internal/infra/config"
	httpiface "github.com/yanqian/astro-profile/internal/interface/http"
	"github.com/yanqian/astro-profile/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideNatalConfig,
		provideGeoConfig,
		provideProfilesConfig,
		provideAuthConfig,
		provideArchiver,
		provideProviderClient,
		provideGeocoder,
		provideProfileRepository,
		geo.NewResolver,
		natal.NewService,
		synastry.NewService,
		profiles.NewService,
		auth.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
