package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/gestor/internal/admin"
	"github.com/wolfeidau/gestor/internal/auth"
	"github.com/wolfeidau/gestor/internal/client"
	"github.com/wolfeidau/gestor/internal/export"
	"github.com/wolfeidau/gestor/internal/identity"
	"github.com/wolfeidau/gestor/internal/store"
	memorystore "github.com/wolfeidau/gestor/internal/store/memory"
	postgresstore "github.com/wolfeidau/gestor/internal/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	// Create HTTP server
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"10"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"2"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"GESTOR_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (s *PostgresStoreFlags) config() *postgresstore.Config {
	return &postgresstore.Config{
		Pool: postgresstore.PoolConfig{
			ConnString:      s.ConnString,
			MaxConns:        s.MaxConns,
			MinConns:        s.MinConns,
			MaxConnLifetime: s.MaxConnLifetime,
			MaxConnIdleTime: s.MaxConnIdleTime,
		},
		AutoMigrate: s.AutoMigrate,
	}
}

// AuthFlags selects how bearer tokens are verified: a shared HS256 secret
// or the ES256 keys published at a JWKS URL.
type AuthFlags struct {
	Secret   string `help:"HS256 secret used to verify bearer tokens" env:"GESTOR_AUTH_SECRET"`
	JWKSURL  string `name:"jwks-url" help:"JWKS URL publishing ES256 verification keys" env:"GESTOR_AUTH_JWKS_URL"`
	CacheDir string `help:"directory caching JWKS responses across restarts, in memory when empty" default:"" env:"GESTOR_AUTH_CACHE_DIR"`
	Issuer   string `help:"expected token issuer" default:"" env:"GESTOR_AUTH_ISSUER"`
	Audience string `help:"expected token audience" default:"authenticated" env:"GESTOR_AUTH_AUDIENCE"`
}

func (a *AuthFlags) validate() error {
	switch {
	case a.Secret == "" && a.JWKSURL == "":
		return errors.New("one of --auth-secret or --auth-jwks-url is required")
	case a.Secret != "" && a.JWKSURL != "":
		return errors.New("--auth-secret and --auth-jwks-url are mutually exclusive")
	case a.Secret != "" && len(a.Secret) < 32:
		return errors.New("auth secret must be at least 32 bytes (256 bits) for HMAC-SHA256")
	}
	return nil
}

func (a *AuthFlags) verifier() (*auth.JWTVerifier, error) {
	var keys auth.KeySource
	if a.JWKSURL != "" {
		keys = auth.NewJWKSKeySource(a.JWKSURL, client.NewCachingHTTPClient(a.CacheDir, 0))
	} else {
		secretKeys, err := auth.NewSecretKeySource([]byte(a.Secret))
		if err != nil {
			return nil, err
		}
		keys = secretKeys
	}

	return auth.NewJWTVerifier(keys, auth.VerifierConfig{
		Issuer:   a.Issuer,
		Audience: a.Audience,
	}), nil
}

type IdentityFlags struct {
	URL        string        `help:"auth admin API base URL, e.g. https://project.supabase.co/auth/v1" env:"GESTOR_IDENTITY_URL"`
	ServiceKey string        `help:"service role key for the auth admin API" env:"GESTOR_IDENTITY_SERVICE_KEY"`
	Timeout    time.Duration `help:"timeout for auth admin API requests" default:"10s"`
}

// provider returns the admin API client, or an in-memory provider when no
// URL is configured.
func (f *IdentityFlags) provider() (identity.Provider, error) {
	if f.URL == "" {
		log.Warn().Msg("No identity URL configured, users are created in memory only")
		return identity.NewMemoryProvider(), nil
	}

	return identity.NewClient(identity.Config{
		URL:        f.URL,
		ServiceKey: f.ServiceKey,
		Timeout:    f.Timeout,
	}, nil)
}

type ExportFlags struct {
	Concurrency  int           `help:"maximum number of table fetches in flight" default:"4"`
	FetchTimeout time.Duration `help:"timeout for each table fetch" default:"30s"`
}

func (f *ExportFlags) config() export.Config {
	return export.Config{
		Concurrency:  f.Concurrency,
		FetchTimeout: f.FetchTimeout,
	}
}

// stores groups the store implementations selected by --store-type.
type stores struct {
	organizations store.OrganizationStore
	profiles      store.ProfileStore
	roles         store.RoleStore
	balances      store.HoursBalanceStore
	rows          export.RowFetcher
	close         func()
}

func openStores(ctx context.Context, storeType string, pg *PostgresStoreFlags) (*stores, error) {
	switch storeType {
	case "memory":
		orgs := memorystore.NewOrganizationStore()
		profiles := memorystore.NewProfileStore()
		roles := memorystore.NewRoleStore()
		balances := memorystore.NewHoursBalanceStore()

		log.Info().Msg("Using in-memory stores")

		return &stores{
			organizations: orgs,
			profiles:      profiles,
			roles:         roles,
			balances:      balances,
			rows:          memorystore.NewTenantReader(orgs, profiles, roles, balances),
			close:         func() {},
		}, nil

	case "postgres":
		if err := pg.validate(); err != nil {
			return nil, fmt.Errorf("failed to validate postgres flags: %w", err)
		}

		pool, err := postgresstore.Open(ctx, pg.config())
		if err != nil {
			return nil, err
		}

		log.Info().Bool("auto_migrate", pg.AutoMigrate).Msg("Using PostgreSQL stores")

		return &stores{
			organizations: postgresstore.NewOrganizationStore(pool),
			profiles:      postgresstore.NewProfileStore(pool),
			roles:         postgresstore.NewRoleStore(pool),
			balances:      postgresstore.NewHoursBalanceStore(pool),
			rows:          postgresstore.NewTenantReader(pool),
			close:         pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store type: %s", storeType)
	}
}

func (s *stores) service(provider identity.Provider, exportCfg export.Config) (*admin.Service, error) {
	return admin.NewService(admin.Deps{
		Organizations: s.organizations,
		Profiles:      s.profiles,
		Roles:         s.roles,
		HoursBalances: s.balances,
		Identity:      provider,
		Exporter:      export.New(s.rows, exportCfg),
		Authorizer:    auth.NewAuthorizer(s.roles),
	}, admin.Config{})
}
