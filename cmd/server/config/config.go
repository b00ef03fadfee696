package config

import (
	"fmt"
	"time"

	"github.com/goliatone/go-errors"
)

// BaseConfig is the service configuration tree. go-config hydrates it from
// config files and environment overrides.
type BaseConfig struct {
	App         App         `json:"app" koanf:"app"`
	Server      Server      `json:"server" koanf:"server"`
	Auth        Auth        `json:"auth" koanf:"auth"`
	Persistence Persistence `json:"persistence" koanf:"persistence"`
}

func (a *BaseConfig) Validate() error {
	if a.Auth.SigningKey == "" {
		return errors.New("auth.signing_key is required", errors.CategoryValidation)
	}
	return nil
}

func (a *BaseConfig) GetApp() App                 { return a.App }
func (a *BaseConfig) GetServer() Server           { return a.Server }
func (a *BaseConfig) GetAuth() Auth               { return a.Auth }
func (a *BaseConfig) GetPersistence() Persistence { return a.Persistence }

type App struct {
	Name  string `json:"name" koanf:"name"`
	Debug bool   `json:"debug" koanf:"debug"`
}

func (a App) GetName() string {
	if a.Name == "" {
		return "go-users"
	}
	return a.Name
}

func (a App) GetDebug() bool { return a.Debug }

type Server struct {
	Address string `json:"address" koanf:"address"`
}

func (s Server) GetAddress() string {
	if s.Address == "" {
		return ":8080"
	}
	return s.Address
}

// Auth satisfies the users.Config interface.
type Auth struct {
	SigningKey    string `json:"signing_key" koanf:"signing_key"`
	SigningMethod string `json:"signing_method" koanf:"signing_method"`
	Issuer        string `json:"issuer" koanf:"issuer"`
	ContextKey    string `json:"context_key" koanf:"context_key"`
	TokenLookup   string `json:"token_lookup" koanf:"token_lookup"`
	AuthScheme    string `json:"auth_scheme" koanf:"auth_scheme"`
}

func (a Auth) GetSigningKey() string { return a.SigningKey }

func (a Auth) GetSigningMethod() string {
	if a.SigningMethod == "" {
		return "HS256"
	}
	return a.SigningMethod
}

func (a Auth) GetIssuer() string { return a.Issuer }

func (a Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "session"
	}
	return a.ContextKey
}

func (a Auth) GetTokenLookup() string {
	if a.TokenLookup == "" {
		return "header:Authorization"
	}
	return a.TokenLookup
}

func (a Auth) GetAuthScheme() string {
	if a.AuthScheme == "" {
		return "Bearer"
	}
	return a.AuthScheme
}

type Persistence struct {
	Driver                string `json:"driver" koanf:"driver"`
	DSN                   string `json:"dsn" koanf:"dsn"`
	Debug                 bool   `json:"debug" koanf:"debug"`
	PingTimeoutExpression string `json:"ping_timeout" koanf:"ping_timeout"`
}

func (p Persistence) GetDriver() string {
	if p.Driver == "" {
		return "sqlite"
	}
	return p.Driver
}

func (p Persistence) GetDSN() string {
	if p.DSN == "" {
		return "file::memory:?cache=shared"
	}
	return p.DSN
}

func (p Persistence) GetDebug() bool { return p.Debug }

func (p Persistence) GetServer() string { return p.GetDSN() }

func (p Persistence) GetOtelIdentifier() string { return "" }

func (p Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}
