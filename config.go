package goShield

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/MrEthical07/goShield/cryptox"
	"github.com/MrEthical07/goShield/logging"
	"github.com/MrEthical07/goShield/password"
)

// EnvPrefix is prepended to every environment variable read by LoadConfig.
const EnvPrefix = "SHIELD_"

const (
	minJWTSecretBytes       = 32
	minPseudonymSecretBytes = 16
)

// Config defines a public type used by goShield APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// ProductionMode makes missing secrets a startup error and marks cookies Secure.
	ProductionMode bool `env:"PRODUCTION"`

	JWT       JWTConfig     `envPrefix:"JWT_"`
	Session   SessionConfig `envPrefix:"SESSION_"`
	Privacy   PrivacyConfig
	Password  PasswordConfig  `envPrefix:"PASSWORD_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Login     LoginConfig     `envPrefix:"LOGIN_"`
	CSRF      CSRFConfig      `envPrefix:"CSRF_"`
	Audit     AuditConfig     `envPrefix:"AUDIT_"`
	Metrics   MetricsConfig   `envPrefix:"METRICS_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Log       logging.Config  `envPrefix:"LOG_"`
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig controls access token issuance. Secret is used for hs256; PrivateKey and
// PublicKey are used for ed25519 and are never read from the environment.
type JWTConfig struct {
	AccessTTL     time.Duration `env:"ACCESS_TTL"`
	SigningMethod string        `env:"SIGNING_METHOD"`
	Secret        string        `env:"SECRET"`
	Issuer        string        `env:"ISSUER"`
	Audience      string        `env:"AUDIENCE"`
	PrivateKey    []byte        `env:"-"`
	PublicKey     []byte        `env:"-"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls refresh sessions and the background sweep.
type SessionConfig struct {
	RefreshTTL        time.Duration `env:"REFRESH_TTL"`
	SweepInterval     time.Duration `env:"SWEEP_INTERVAL"`
	RefreshTokenBytes int           `env:"REFRESH_TOKEN_BYTES"`
	RedisPrefix       string        `env:"REDIS_PREFIX"`
}

/*
====================================
PRIVACY CONFIG
====================================
*/

// PrivacyConfig holds the field-encryption key (hex, 32 bytes) and the pseudonym secret.
type PrivacyConfig struct {
	EncryptionKey   string `env:"ENCRYPTION_KEY"`
	PseudonymSecret string `env:"PSEUDONYM_SECRET"`
}

// PasswordConfig selects the hashing algorithm for new records.
type PasswordConfig struct {
	Algorithm        string `env:"ALGORITHM"`
	PBKDF2Iterations int    `env:"PBKDF2_ITERATIONS"`
	Argon2Memory     uint32 `env:"ARGON2_MEMORY"`
	Argon2Time       uint32 `env:"ARGON2_TIME"`
	UpgradeOnLogin   bool   `env:"UPGRADE_ON_LOGIN"`
}

/*
====================================
EDGE CONFIG
====================================
*/

// RateLimitConfig is the per-origin fixed window applied by Engine.Admit.
type RateLimitConfig struct {
	Enabled bool          `env:"ENABLED"`
	Limit   int           `env:"LIMIT"`
	Window  time.Duration `env:"WINDOW"`
}

// LoginConfig is the per-identifier attempt window applied by Engine.Login.
type LoginConfig struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS"`
	Cooldown    time.Duration `env:"COOLDOWN"`
}

// CSRFConfig controls the CSRF cookie minted by the edge middleware.
type CSRFConfig struct {
	CookieName string        `env:"COOKIE_NAME"`
	TokenBytes int           `env:"TOKEN_BYTES"`
	MaxAge     time.Duration `env:"MAX_AGE"`
}

// AuditConfig defines a public type used by goShield APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool `env:"ENABLED"`
	BufferSize int  `env:"BUFFER_SIZE"`
	DropIfFull bool `env:"DROP_IF_FULL"`
}

// MetricsConfig defines a public type used by goShield APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS"`
}

// RedisConfig is consumed by binaries that build a Redis client. The Engine itself takes
// a ready client through Builder.WithRedis.
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"`
}

// DefaultConfig returns development defaults. Secrets are empty.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     time.Hour,
			SigningMethod: "hs256",
		},
		Session: SessionConfig{
			RefreshTTL:        7 * 24 * time.Hour,
			SweepInterval:     time.Hour,
			RefreshTokenBytes: 32,
			RedisPrefix:       "shs",
		},
		Password: PasswordConfig{
			Algorithm:        string(password.AlgorithmPBKDF2),
			PBKDF2Iterations: password.MinPBKDF2Iterations,
			Argon2Memory:     64 * 1024,
			Argon2Time:       3,
			UpgradeOnLogin:   true,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Limit:   100,
			Window:  time.Minute,
		},
		Login: LoginConfig{
			MaxAttempts: 5,
			Cooldown:    15 * time.Minute,
		},
		CSRF: CSRFConfig{
			CookieName: "csrf-token",
			TokenBytes: 32,
			MaxAge:     time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Log: logging.Config{Level: "info"},
	}
}

// LoadConfig overlays SHIELD_* environment variables on DefaultConfig and validates the
// result.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks ranges and, in production mode, that every secret is present.
// Outside production mode empty secrets are allowed and replaced at Build time with
// random per-process values; secrets that are present must still be well formed.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	switch c.JWT.SigningMethod {
	case "hs256":
		if c.JWT.Secret != "" && len(c.JWT.Secret) < minJWTSecretBytes {
			return fmt.Errorf("JWT Secret must be at least %d bytes", minJWTSecretBytes)
		}
		if c.ProductionMode && c.JWT.Secret == "" {
			return errors.New("JWT Secret is required in production mode")
		}
	case "ed25519":
		if len(c.JWT.PrivateKey) == 0 || len(c.JWT.PublicKey) == 0 {
			return errors.New("ed25519 requires PrivateKey and PublicKey")
		}
	default:
		return errors.New("unsupported JWT signing method")
	}

	// Session
	if c.Session.RefreshTTL <= 0 {
		return errors.New("Session RefreshTTL must be > 0")
	}
	if c.Session.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("Session RefreshTTL must exceed JWT AccessTTL")
	}
	if c.Session.SweepInterval <= 0 {
		return errors.New("Session SweepInterval must be > 0")
	}
	if c.Session.RefreshTokenBytes < 16 {
		return errors.New("Session RefreshTokenBytes must be >= 16")
	}

	// Privacy
	if c.Privacy.EncryptionKey != "" {
		if _, err := cryptox.ParseKey(c.Privacy.EncryptionKey); err != nil {
			return fmt.Errorf("Privacy EncryptionKey must be %d hex-encoded bytes", cryptox.KeySize)
		}
	} else if c.ProductionMode {
		return errors.New("Privacy EncryptionKey is required in production mode")
	}
	if c.Privacy.PseudonymSecret != "" && len(c.Privacy.PseudonymSecret) < minPseudonymSecretBytes {
		return fmt.Errorf("Privacy PseudonymSecret must be at least %d bytes", minPseudonymSecretBytes)
	}
	if c.ProductionMode && c.Privacy.PseudonymSecret == "" {
		return errors.New("Privacy PseudonymSecret is required in production mode")
	}

	// Password
	switch password.Algorithm(c.Password.Algorithm) {
	case password.AlgorithmPBKDF2:
		if c.Password.PBKDF2Iterations < password.MinPBKDF2Iterations {
			return fmt.Errorf("Password PBKDF2Iterations must be >= %d", password.MinPBKDF2Iterations)
		}
	case password.AlgorithmArgon2id:
		if c.Password.Argon2Memory < 8*1024 {
			return errors.New("Password Argon2Memory must be >= 8192 KB")
		}
		if c.Password.Argon2Time < 1 {
			return errors.New("Password Argon2Time must be >= 1")
		}
	default:
		return errors.New("unsupported Password Algorithm")
	}

	// Edge
	if c.RateLimit.Enabled {
		if c.RateLimit.Limit <= 0 {
			return errors.New("RateLimit Limit must be > 0")
		}
		if c.RateLimit.Window <= 0 {
			return errors.New("RateLimit Window must be > 0")
		}
	}
	if c.Login.MaxAttempts < 0 {
		return errors.New("Login MaxAttempts must be >= 0")
	}
	if c.Login.MaxAttempts > 0 && c.Login.Cooldown <= 0 {
		return errors.New("Login Cooldown must be > 0 when MaxAttempts is set")
	}
	if c.CSRF.CookieName == "" {
		return errors.New("CSRF CookieName must be set")
	}
	if c.CSRF.TokenBytes < 16 {
		return errors.New("CSRF TokenBytes must be >= 16")
	}
	if c.CSRF.MaxAge < time.Second {
		return errors.New("CSRF MaxAge must be >= 1s")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}

// secrets are the resolved key material an Engine runs with.
type secrets struct {
	jwtKey          []byte
	encryptionKey   []byte
	pseudonymSecret []byte
	ephemeral       []string
}

// resolveSecrets decodes configured secrets and, outside production mode, fills the
// missing ones with fresh random values. ephemeral lists the names that were generated.
func resolveSecrets(c Config) (secrets, error) {
	var s secrets

	switch c.JWT.SigningMethod {
	case "ed25519":
		s.jwtKey = cloneBytes(c.JWT.PrivateKey)
	default:
		if c.JWT.Secret != "" {
			s.jwtKey = []byte(c.JWT.Secret)
		} else {
			if c.ProductionMode {
				return secrets{}, errors.New("JWT Secret is required in production mode")
			}
			key, err := cryptox.RandomBytes(minJWTSecretBytes)
			if err != nil {
				return secrets{}, err
			}
			s.jwtKey = key
			s.ephemeral = append(s.ephemeral, EnvPrefix+"JWT_SECRET")
		}
	}

	if c.Privacy.EncryptionKey != "" {
		key, err := cryptox.ParseKey(c.Privacy.EncryptionKey)
		if err != nil {
			return secrets{}, err
		}
		s.encryptionKey = key
	} else {
		if c.ProductionMode {
			return secrets{}, errors.New("Privacy EncryptionKey is required in production mode")
		}
		key, err := cryptox.RandomBytes(cryptox.KeySize)
		if err != nil {
			return secrets{}, err
		}
		s.encryptionKey = key
		s.ephemeral = append(s.ephemeral, EnvPrefix+"ENCRYPTION_KEY")
	}

	if c.Privacy.PseudonymSecret != "" {
		s.pseudonymSecret = []byte(c.Privacy.PseudonymSecret)
	} else {
		if c.ProductionMode {
			return secrets{}, errors.New("Privacy PseudonymSecret is required in production mode")
		}
		secret, err := cryptox.RandomBytes(32)
		if err != nil {
			return secrets{}, err
		}
		s.pseudonymSecret = secret
		s.ephemeral = append(s.ephemeral, EnvPrefix+"PSEUDONYM_SECRET")
	}

	return s, nil
}

// GenerateEncryptionKey returns a fresh hex-encoded key suitable for
// SHIELD_ENCRYPTION_KEY.
func GenerateEncryptionKey() (string, error) {
	key, err := cryptox.RandomBytes(cryptox.KeySize)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}
