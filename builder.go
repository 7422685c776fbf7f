package goShield

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrEthical07/goShield/cryptox"
	"github.com/MrEthical07/goShield/internal/audit"
	"github.com/MrEthical07/goShield/internal/rate"
	"github.com/MrEthical07/goShield/jwt"
	"github.com/MrEthical07/goShield/logging"
	"github.com/MrEthical07/goShield/password"
	"github.com/MrEthical07/goShield/privacy"
	"github.com/MrEthical07/goShield/session"
)

// Limiter is a per-key fixed-window counter. Implementations are provided for memory and
// Redis; Builder picks one unless WithLimiter is used.
type Limiter = rate.Limiter

// LimitDecision is the outcome of one Limiter.Allow call.
type LimitDecision = rate.Decision

// SessionStore persists sessions keyed by refresh-token hash.
type SessionStore = session.Store

// Builder defines a public type used by goShield APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	store        session.Store
	limiter      rate.Limiter
	loginLimiter rate.Limiter

	userProvider UserProvider
	auditSink    AuditSink
	logger       *zap.Logger
	now          func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs sessions and both limiters with client. Without it everything lives
// in process memory.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStore overrides the session store.
func (b *Builder) WithStore(store SessionStore) *Builder {
	b.store = store
	return b
}

// WithLimiter overrides the admission limiter used by Engine.Admit.
func (b *Builder) WithLimiter(l Limiter) *Builder {
	b.limiter = l
	return b
}

// WithLoginLimiter overrides the per-identifier limiter used by Engine.Login.
func (b *Builder) WithLoginLimiter(l Limiter) *Builder {
	b.loginLimiter = l
	return b
}

// WithUserProvider describes the withuserprovider operation and its observable behavior.
//
// WithUserProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the engine logger. It is wrapped in a sanitizing core.
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithClock overrides time.Now for sessions, tokens and limiters.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms enables the validate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// In production mode every secret must be configured; otherwise missing secrets are
// replaced with random per-process values and a warning is logged.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	logger := logging.Wrap(b.logger)

	// -------- SECRETS --------
	keys, err := resolveSecrets(cfg)
	if err != nil {
		return nil, err
	}
	for _, name := range keys.ephemeral {
		logger.Warn("secret not configured, using a random per-process value",
			zap.String("variable", name),
			zap.Bool("production", cfg.ProductionMode),
		)
	}

	// -------- CRYPTO --------
	cipher, err := cryptox.NewCipher(keys.encryptionKey)
	if err != nil {
		return nil, err
	}
	pseudonymizer, err := privacy.NewPseudonymizer(keys.pseudonymSecret, cipher)
	if err != nil {
		return nil, err
	}

	pcfg := password.DefaultPBKDF2Config()
	pcfg.Iterations = cfg.Password.PBKDF2Iterations
	acfg := password.DefaultArgon2Config()
	acfg.Memory = cfg.Password.Argon2Memory
	acfg.Time = cfg.Password.Argon2Time
	passwords, err := password.NewSuite(password.Algorithm(cfg.Password.Algorithm), pcfg, acfg)
	if err != nil {
		return nil, err
	}
	dummyHash, err := passwords.Hash("goshield-dummy-password")
	if err != nil {
		return nil, err
	}

	// -------- JWT --------
	jwtCfg := jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    keys.jwtKey,
		PublicKey:     cloneBytes(cfg.JWT.PublicKey),
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Now:           now,
	}
	jwtManager, err := jwt.NewManager(jwtCfg)
	if err != nil {
		return nil, err
	}

	// -------- STORES & LIMITERS --------
	store := b.store
	if store == nil {
		if b.redis != nil {
			store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix, now)
		} else {
			store = session.NewMemoryStore()
		}
	}

	limiter := b.limiter
	if limiter == nil && cfg.RateLimit.Enabled {
		rcfg := rate.Config{Limit: cfg.RateLimit.Limit, Window: cfg.RateLimit.Window}
		if b.redis != nil {
			limiter = rate.NewRedis(b.redis, rcfg, cfg.Session.RedisPrefix+":rl")
		} else {
			limiter = rate.NewMemory(rcfg, now)
		}
	}

	loginLimiter := b.loginLimiter
	if loginLimiter == nil && cfg.Login.MaxAttempts > 0 {
		lcfg := rate.Config{Limit: cfg.Login.MaxAttempts, Window: cfg.Login.Cooldown}
		if b.redis != nil {
			loginLimiter = rate.NewRedis(b.redis, lcfg, cfg.Session.RedisPrefix+":login")
		} else {
			loginLimiter = rate.NewMemory(lcfg, now)
		}
	}

	// -------- AUDIT & METRICS --------
	sink := b.auditSink
	if sink == nil {
		sink = audit.NewZapSink(logger)
	}
	dispatcher := audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, sink)

	b.built = true

	return &Engine{
		config:        cfg,
		store:         store,
		limiter:       limiter,
		loginLimiter:  loginLimiter,
		jwtManager:    jwtManager,
		passwords:     passwords,
		dummyHash:     dummyHash,
		cipher:        cipher,
		pseudonymizer: pseudonymizer,
		audit:         dispatcher,
		metrics:       NewMetrics(cfg.Metrics),
		logger:        logger,
		userProvider:  b.userProvider,
		now:           now,
	}, nil
}
