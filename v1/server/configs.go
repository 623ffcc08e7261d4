package server

import (
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/kelseyhightower/envconfig"

	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
)

// Config defines the settings for connecting to a SeekDB or OceanBase server.
type Config struct {
	Connection        Connection        `yaml:"connection"`
	ConnectionDetails ConnectionDetails `yaml:"connection_details"`
}

// Connection holds the address and credentials of the server.
type Connection struct {
	Host string `yaml:"host" envconfig:"SERVER_HOST" default:"127.0.0.1"`
	Port int    `yaml:"port" envconfig:"SERVER_PORT" default:"2881"`

	// Tenant is appended to the user as "user@tenant". Empty means the
	// server's default tenant.
	Tenant   string `yaml:"tenant" envconfig:"SERVER_TENANT" default:"sys"`
	User     string `yaml:"user" envconfig:"SERVER_USER" default:"root"`
	Password string `yaml:"password" envconfig:"SERVER_PASSWORD"`
	DbName   string `yaml:"database" envconfig:"SERVER_DATABASE" default:"test"`

	// TLS is the driver's tls parameter: "true", "false", "skip-verify",
	// "preferred" or the name of a registered config.
	TLS string `yaml:"tls" envconfig:"SERVER_TLS"`

	Timeout      time.Duration `yaml:"timeout" envconfig:"SERVER_TIMEOUT" default:"10s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`

	// InterpolateParams binds parameters client-side and saves a round trip
	// per statement.
	InterpolateParams bool `yaml:"interpolate_params" envconfig:"SERVER_INTERPOLATE_PARAMS"`
}

// ConnectionDetails configures the connection pool and its health check.
type ConnectionDetails struct {
	MaxOpenConns        int           `yaml:"max_open_conns" envconfig:"SERVER_MAX_CONNECTIONS" default:"5"`
	MaxIdleConns        int           `yaml:"max_idle_conns" envconfig:"SERVER_MAX_IDLE_CONNECTIONS" default:"5"`
	ConnMaxLifetime     time.Duration `yaml:"conn_max_lifetime" envconfig:"SERVER_CONN_MAX_LIFETIME" default:"5m"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval" envconfig:"SERVER_HEALTH_CHECK_INTERVAL" default:"10s"`
}

// DefaultConfig returns the configuration of a local single-node server.
func DefaultConfig() Config {
	return Config{
		Connection: Connection{
			Host:    "127.0.0.1",
			Port:    2881,
			Tenant:  "sys",
			User:    "root",
			DbName:  "test",
			Timeout: 10 * time.Second,
		},
		ConnectionDetails: ConnectionDetails{
			MaxOpenConns:        5,
			MaxIdleConns:        5,
			ConnMaxLifetime:     5 * time.Minute,
			HealthCheckInterval: 10 * time.Second,
		},
	}
}

// NewConfigFromEnv reads the SERVER_* environment variables on top of the
// defaults. Malformed values and an invalid result are reported as
// seekdb.ErrConfig.
func NewConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg.Connection); err != nil {
		return Config{}, seekdb.NewError(seekdb.CategoryConfig, err, "reading server connection from environment")
	}
	if err := envconfig.Process("", &cfg.ConnectionDetails); err != nil {
		return Config{}, seekdb.NewError(seekdb.CategoryConfig, err, "reading server pool settings from environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields a connection cannot be opened without.
func (c Config) Validate() error {
	switch {
	case c.Connection.Host == "":
		return seekdb.NewError(seekdb.CategoryConfig, nil, "server host is required")
	case c.Connection.Port <= 0 || c.Connection.Port > 65535:
		return seekdb.NewError(seekdb.CategoryConfig, nil, "server port %d is out of range", c.Connection.Port)
	case c.Connection.User == "":
		return seekdb.NewError(seekdb.CategoryConfig, nil, "server user is required")
	}
	return nil
}

// DSN renders the go-sql-driver data source name. The user is qualified
// with the tenant as "user@tenant".
func (c Config) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.Connection.User
	if c.Connection.Tenant != "" {
		mc.User += "@" + c.Connection.Tenant
	}
	mc.Passwd = c.Connection.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Connection.Host, strconv.Itoa(c.Connection.Port))
	mc.DBName = c.Connection.DbName
	mc.TLSConfig = c.Connection.TLS
	mc.Timeout = c.Connection.Timeout
	mc.ReadTimeout = c.Connection.ReadTimeout
	mc.WriteTimeout = c.Connection.WriteTimeout
	mc.InterpolateParams = c.Connection.InterpolateParams
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}
