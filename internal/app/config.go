package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"didvault/internal/crypto"
	"didvault/internal/platform/retry"
)

// EnvPrefix prefixes every environment override, e.g. DIDVAULT_LISTEN.
const EnvPrefix = "DIDVAULT"

const (
	PinningIPFS = "ipfs"
	PinningFile = "file"

	RelayLog  = "log"
	RelayHTTP = "http"
)

// Config holds runtime options for the vault service and CLI.
type Config struct {
	Listen          string        `yaml:"listen" envconfig:"LISTEN"`
	MetricsListen   string        `yaml:"metrics_listen" envconfig:"METRICS_LISTEN"` // empty disables
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`

	// TrustForwardedFor keys rate limiting and access logs on the first
	// X-Forwarded-For hop. Enable only behind a proxy that sets the header.
	TrustForwardedFor bool `yaml:"trust_forwarded_for" envconfig:"TRUST_FORWARDED_FOR"`

	LogLevel  string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT"` // json or console

	Admin               string `yaml:"admin" envconfig:"ADMIN"`
	DIDMethod           string `yaml:"did_method" envconfig:"DID_METHOD"`
	Cipher              string `yaml:"cipher" envconfig:"CIPHER"`
	MinPassphraseLength int    `yaml:"min_passphrase_length" envconfig:"MIN_PASSPHRASE_LENGTH"`
	MaxUploadBytes      int64  `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`

	RateLimit RateLimit `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Pinning   Pinning   `yaml:"pinning" envconfig:"PINNING"`
	Relay     Relay     `yaml:"relay" envconfig:"RELAY"`
}

// RateLimit caps requests per client address. Requests <= 0 disables it.
type RateLimit struct {
	Requests int           `yaml:"requests" envconfig:"REQUESTS"`
	Window   time.Duration `yaml:"window" envconfig:"WINDOW"`
}

// Pinning selects where encrypted documents are stored.
type Pinning struct {
	Mode     string        `yaml:"mode" envconfig:"MODE"`         // ipfs or file
	Endpoint string        `yaml:"endpoint" envconfig:"ENDPOINT"` // ipfs add URL
	Dir      string        `yaml:"dir" envconfig:"DIR"`           // file mode root
	Timeout  time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	Retry    retry.Policy  `yaml:"retry" envconfig:"RETRY"`
}

// Relay selects how DIDs are propagated.
type Relay struct {
	Mode      string        `yaml:"mode" envconfig:"MODE"` // log or http
	Endpoint  string        `yaml:"endpoint" envconfig:"ENDPOINT"`
	Target    string        `yaml:"target" envconfig:"TARGET"` // default target, empty disables
	Workers   int           `yaml:"workers" envconfig:"WORKERS"`
	QueueSize int           `yaml:"queue_size" envconfig:"QUEUE_SIZE"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	Retry     retry.Policy  `yaml:"retry" envconfig:"RETRY"`
}

// Default returns a configuration that runs locally without external
// services: blobs pinned to ./data/blobs and relaying logged only.
func Default() Config {
	return Config{
		Listen:          "127.0.0.1:3000",
		MetricsListen:   "127.0.0.1:9090",
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
		LogFormat:       "json",
		Admin:           "admin",
		DIDMethod:       "dv",
		Cipher:          string(crypto.SuiteAES256GCM),
		MaxUploadBytes:  10 << 20,
		RateLimit: RateLimit{
			Requests: 100,
			Window:   15 * time.Minute,
		},
		Pinning: Pinning{
			Mode:     PinningFile,
			Endpoint: "http://127.0.0.1:5001/api/v0/add",
			Dir:      "data/blobs",
			Timeout:  30 * time.Second,
			Retry:    retry.Default(),
		},
		Relay: Relay{
			Mode:      RelayLog,
			Workers:   2,
			QueueSize: 128,
			Timeout:   10 * time.Second,
			Retry:     retry.Default(),
		},
	}
}

// Load starts from Default, applies the YAML file at path (if any) and then
// DIDVAULT_* environment variables. It does not validate; callers apply
// flag overrides first and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("environment overrides: %w", err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address is required")
	}
	if strings.TrimSpace(c.Admin) == "" {
		return errors.New("admin is required")
	}
	if c.DIDMethod == "" {
		return errors.New("did_method is required")
	}
	if _, err := crypto.ParseSuite(c.Cipher); err != nil {
		return err
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return errors.New("rate_limit.window must be positive when requests is set")
	}
	switch c.Pinning.Mode {
	case PinningIPFS:
		if c.Pinning.Endpoint == "" {
			return errors.New("pinning.endpoint is required in ipfs mode")
		}
	case PinningFile:
		if c.Pinning.Dir == "" {
			return errors.New("pinning.dir is required in file mode")
		}
	default:
		return fmt.Errorf("unknown pinning mode %q", c.Pinning.Mode)
	}
	switch c.Relay.Mode {
	case RelayLog:
	case RelayHTTP:
		if c.Relay.Endpoint == "" {
			return errors.New("relay.endpoint is required in http mode")
		}
	default:
		return fmt.Errorf("unknown relay mode %q", c.Relay.Mode)
	}
	if c.Relay.Workers <= 0 || c.Relay.QueueSize <= 0 {
		return errors.New("relay.workers and relay.queue_size must be positive")
	}
	return nil
}
