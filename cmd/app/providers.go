package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/astro-profile/internal/domain/auth"
	"github.com/yanqian/astro-profile/internal/domain/geo"
	"github.com/yanqian/astro-profile/internal/domain/natal"
	"github.com/yanqian/astro-profile/internal/domain/profiles"
	"github.com/yanqian/astro-profile/internal/infra/archive"
	"github.com/yanqian/astro-profile/internal/infra/config"
	"github.com/yanqian/astro-profile/internal/infra/ephemeris"
	"github.com/yanqian/astro-profile/internal/infra/geocoding/cache"
	"github.com/yanqian/astro-profile/internal/infra/geocoding/ors"
	"github.com/yanqian/astro-profile/internal/infra/profilerepo"
)

func provideNatalConfig(cfg *config.Config) natal.Config {
	return natal.Config{
		HouseSystem:     cfg.Ephemeris.HouseSystem,
		ProviderTimeout: cfg.Ephemeris.Timeout,
	}
}

func provideGeoConfig(cfg *config.Config) geo.Config {
	return geo.Config{GeocodeTimeout: cfg.Geocoding.Timeout}
}

func provideProfilesConfig(cfg *config.Config) profiles.Config {
	return profiles.Config{ListLimit: cfg.Profiles.ListLimit}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
	}
}

func provideArchiver(cfg *config.Config, logger *slog.Logger) ephemeris.Archiver {
	if !cfg.Archive.Enabled {
		return nil
	}
	r2, err := archive.NewR2Archive(archive.Config{
		Endpoint:  cfg.Archive.Endpoint,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Bucket:    cfg.Archive.Bucket,
		Region:    cfg.Archive.Region,
	}, logger)
	if err != nil {
		logger.Error("failed to init payload archive, continuing without it", "error", err)
		return nil
	}
	logger.Info("ephemeris payload archive enabled", "bucket", cfg.Archive.Bucket)
	return r2
}

// provideProviderClient returns nil when no credentials are configured; the
// natal service then always uses the fallback generator.
func provideProviderClient(cfg *config.Config, archiver ephemeris.Archiver, logger *slog.Logger) natal.ProviderClient {
	if strings.TrimSpace(cfg.Ephemeris.APIKey) == "" {
		logger.Info("ephemeris api key not set, every profile will use the fallback generator")
		return nil
	}
	return ephemeris.NewClient(ephemeris.Config{
		BaseURL:           cfg.Ephemeris.BaseURL,
		UserID:            cfg.Ephemeris.UserID,
		APIKey:            cfg.Ephemeris.APIKey,
		Timeout:           cfg.Ephemeris.Timeout,
		MaxAttempts:       cfg.Ephemeris.MaxAttempts,
		RequestsPerSecond: cfg.Ephemeris.RequestsPerSecond,
	}, archiver, logger)
}

func provideGeocoder(cfg *config.Config, logger *slog.Logger) geo.Geocoder {
	if strings.TrimSpace(cfg.Geocoding.APIKey) == "" {
		logger.Info("geocoding api key not set, only gazetteer places will resolve")
		return nil
	}
	client := ors.NewClient(ors.Config{
		BaseURL: cfg.Geocoding.BaseURL,
		APIKey:  cfg.Geocoding.APIKey,
		Country: cfg.Geocoding.Country,
		Timeout: cfg.Geocoding.Timeout,
	}, logger)
	if !cfg.Geocoding.Cache.Enabled {
		return client
	}
	opt, err := buildValkeyOptions(cfg.Geocoding.Cache.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, geocoding without cache", "error", err)
		return client
	}
	vk, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, geocoding without cache", "error", err)
		return client
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := vk.Do(ctx, vk.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, geocoding without cache", "error", err)
		vk.Close()
		return client
	}
	logger.Info("geocode valkey cache enabled", "addr", cfg.Geocoding.Cache.Addr)
	return cache.NewValkeyGeocoder(client, vk, "geocode", cfg.Geocoding.Cache.TTL, logger)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideProfileRepository(cfg *config.Config, logger *slog.Logger) profiles.Repository {
	fallback := profilerepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Profiles.Postgres.DSN)
	if dsn == "" {
		logger.Info("profiles postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Profiles.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Profiles.Postgres.MaxConns
	}
	if cfg.Profiles.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Profiles.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	repo := profilerepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("postgres schema setup failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("profiles postgres repository enabled")
	return repo
}
