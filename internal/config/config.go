// Package config provides types for handling configuration parameters.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/pflag"
)

// Supported values of enumerated parameters.
const (
	CodecBijective = "bijective"
	CodecHashids   = "hashids"

	DigestBLAKE3  = "blake3"
	DigestBLAKE2b = "blake2b"
	DigestSHA1    = "sha1"

	BlobDriverFile = "file"
	BlobDriverS3   = "s3"

	DriverPGX      = "pgx"
	DriverPostgres = "postgres"

	DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Config handles all application parameters.
type Config struct {
	ServerConfig  ServerConfig  `yaml:"server"`
	StorageConfig StorageConfig `yaml:"storage"`
	ServiceConfig ServiceConfig `yaml:"service"`
	LogConfig     LogConfig     `yaml:"log"`
	Presets       Presets       `yaml:"presets"`
}

// ServerConfig defines server-related parameters.
type ServerConfig struct {
	ServerAddress  string     `yaml:"server_address" env:"SERVER_ADDRESS" env-default:":9515"`
	GRPCAddress    string     `yaml:"grpc_address" env:"GRPC_ADDRESS"`
	BaseURL        string     `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:9515"`
	MaxUploadBytes int64      `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"33554432"`
	TrustedSubnet  string     `yaml:"trusted_subnet" env:"TRUSTED_SUBNET"`
	CORS           CORSConfig `yaml:"cors"`
}

// CORSConfig defines cross-origin response headers. Empty AllowOrigin disables them.
type CORSConfig struct {
	AllowOrigin  string `yaml:"allow_origin" env:"CORS_ALLOW_ORIGIN"`
	AllowMethods string `yaml:"allow_methods" env:"CORS_ALLOW_METHODS" env-default:"GET, POST, PUT, OPTIONS"`
	AllowHeaders string `yaml:"allow_headers" env:"CORS_ALLOW_HEADERS" env-default:"Content-Type"`
}

// StorageConfig defines entry and blob storage parameters.
type StorageConfig struct {
	SQLitePath     string   `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"pastebin.sqlite"`
	DatabaseDSN    string   `yaml:"database_dsn" env:"DATABASE_DSN"`
	DatabaseDriver string   `yaml:"database_driver" env:"DATABASE_DRIVER" env-default:"pgx"`
	UploadsDir     string   `yaml:"uploads_dir" env:"UPLOADS_DIR" env-default:"uploads"`
	BlobDriver     string   `yaml:"blob_driver" env:"BLOB_DRIVER" env-default:"file"`
	S3             S3Config `yaml:"s3"`
}

// S3Config defines parameters of the S3 blob storage.
type S3Config struct {
	Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
	Region    string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	PathStyle bool   `yaml:"path_style" env:"S3_PATH_STYLE"`
	Prefix    string `yaml:"prefix" env:"S3_PREFIX"`
}

// ServiceConfig defines identifier allocation and rendering parameters.
type ServiceConfig struct {
	Alphabet        string `yaml:"alphabet" env:"ALPHABET"`
	MaxTries        int    `yaml:"max_tries" env:"MAX_TRIES" env-default:"10"`
	SpaceFactor     int64  `yaml:"space_factor" env:"SPACE_FACTOR" env-default:"10"`
	IdentifierCodec string `yaml:"identifier_codec" env:"IDENTIFIER_CODEC" env-default:"bijective"`
	HashidsSalt     string `yaml:"hashids_salt" env:"HASHIDS_SALT"`
	Digest          string `yaml:"digest" env:"DIGEST" env-default:"blake3"`
	DefaultStyle    string `yaml:"default_style" env:"DEFAULT_STYLE" env-default:"friendly"`
	RenderCacheSize int    `yaml:"render_cache_size" env:"RENDER_CACHE_SIZE" env-default:"256"`
}

// LogConfig defines logging parameters.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Presets are entries created at start-up: URLs maps identifiers to link targets, Pastes maps
// identifiers to files whose content becomes the paste.
type Presets struct {
	URLs   map[string]string `yaml:"urls"`
	Pastes map[string]string `yaml:"pastes"`
}

// NewDefaultConfiguration sets up an empty configuration to be filled by Parse.
func NewDefaultConfiguration() *Config {
	return &Config{}
}

// Parse reads the configuration from command line arguments of the current process.
func (c *Config) Parse() error {
	return c.ParseArgs(os.Args[1:])
}

// ParseArgs reads the configuration file (flag -c or CONFIG), then environment variables, then
// applies explicitly set command line flags on top.
func (c *Config) ParseArgs(args []string) error {
	fs := pflag.NewFlagSet("pastebin", pflag.ContinueOnError)
	a := fs.StringP("address", "a", "", "HTTP server address")
	g := fs.StringP("grpc-address", "g", "", "gRPC server address")
	b := fs.StringP("base-url", "b", "", "Base url")
	f := fs.StringP("sqlite-path", "f", "", "SQLite database path")
	d := fs.StringP("database-dsn", "d", "", "PostgreSQL DSN")
	u := fs.StringP("uploads-dir", "u", "", "Uploads directory")
	cfgPath := fs.StringP("config", "c", "", "Configuration file path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cfgPath == "" {
		*cfgPath = os.Getenv("CONFIG")
	}
	if err := c.assignValues(*cfgPath); err != nil {
		return err
	}

	overrides := map[string]struct {
		src *string
		dst *string
	}{
		"address":      {a, &c.ServerConfig.ServerAddress},
		"grpc-address": {g, &c.ServerConfig.GRPCAddress},
		"base-url":     {b, &c.ServerConfig.BaseURL},
		"sqlite-path":  {f, &c.StorageConfig.SQLitePath},
		"database-dsn": {d, &c.StorageConfig.DatabaseDSN},
		"uploads-dir":  {u, &c.StorageConfig.UploadsDir},
	}
	for name, o := range overrides {
		if fs.Changed(name) {
			*o.dst = *o.src
		}
	}
	return c.Validate()
}

// assignValues fills the configuration from a file, if given, and the environment.
func (c *Config) assignValues(cfgPath string) error {
	if cfgPath != "" {
		return cleanenv.ReadConfig(cfgPath, c)
	}
	return cleanenv.ReadEnv(c)
}

// Validate checks enumerated and numeric parameters.
func (c *Config) Validate() error {
	var errs []error
	if c.ServiceConfig.Alphabet == "" {
		c.ServiceConfig.Alphabet = DefaultAlphabet
	}
	if c.ServiceConfig.MaxTries < 1 {
		errs = append(errs, fmt.Errorf("max tries must be at least 1, got %d", c.ServiceConfig.MaxTries))
	}
	if c.ServiceConfig.SpaceFactor < 2 {
		errs = append(errs, fmt.Errorf("space factor must be at least 2, got %d", c.ServiceConfig.SpaceFactor))
	}
	if !oneOf(c.ServiceConfig.IdentifierCodec, CodecBijective, CodecHashids) {
		errs = append(errs, fmt.Errorf("unknown identifier codec %q", c.ServiceConfig.IdentifierCodec))
	}
	if !oneOf(c.ServiceConfig.Digest, DigestBLAKE3, DigestBLAKE2b, DigestSHA1) {
		errs = append(errs, fmt.Errorf("unknown digest %q", c.ServiceConfig.Digest))
	}
	if !oneOf(c.StorageConfig.BlobDriver, BlobDriverFile, BlobDriverS3) {
		errs = append(errs, fmt.Errorf("unknown blob driver %q", c.StorageConfig.BlobDriver))
	}
	if c.StorageConfig.BlobDriver == BlobDriverS3 && c.StorageConfig.S3.Bucket == "" {
		errs = append(errs, errors.New("s3 blob driver requires a bucket"))
	}
	if c.StorageConfig.DatabaseDSN != "" && !oneOf(c.StorageConfig.DatabaseDriver, DriverPGX, DriverPostgres) {
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.StorageConfig.DatabaseDriver))
	}
	if c.ServerConfig.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max upload bytes must be positive, got %d", c.ServerConfig.MaxUploadBytes))
	}
	if c.ServerConfig.TrustedSubnet != "" {
		if _, _, err := net.ParseCIDR(c.ServerConfig.TrustedSubnet); err != nil {
			errs = append(errs, fmt.Errorf("trusted subnet: %w", err))
		}
	}
	c.ServerConfig.BaseURL = strings.TrimRight(c.ServerConfig.BaseURL, "/")
	return errors.Join(errs...)
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
