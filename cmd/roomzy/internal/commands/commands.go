package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/roomzy/internal/apiclient"
	"github.com/wolfeidau/roomzy/internal/config"
	"github.com/wolfeidau/roomzy/internal/guard"
	"github.com/wolfeidau/roomzy/internal/logger"
	"github.com/wolfeidau/roomzy/internal/service"
	"github.com/wolfeidau/roomzy/internal/session"
	"github.com/wolfeidau/roomzy/internal/storage"
	"github.com/wolfeidau/roomzy/internal/telemetry"
)

type Globals struct {
	Debug    bool
	Version  string
	Config   string
	APIURL   string
	StateDir string
	Timeout  time.Duration
	Cache    bool
	CacheDir string
	Tracing  bool

	stdout io.Writer
	stdin  io.Reader
}

func (g *Globals) out() io.Writer {
	if g.stdout != nil {
		return g.stdout
	}
	return os.Stdout
}

// app is everything a command needs, wired once per invocation.
type app struct {
	cfg     config.Config
	tokens  *storage.TokenStore
	client  *apiclient.Client
	auth    *service.AuthService
	users   *service.UserService
	admin   *service.AdminService
	session *session.Store
	prompt  *prompter
	out     io.Writer

	// sessionLost is set when the client could not refresh an expired session
	sessionLost bool
	shutdown    func()
}

func (g *Globals) open(ctx context.Context) (*app, error) {
	log.Logger = logger.Setup(g.Debug)

	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	cfg.Apply(config.Overrides{
		APIURL:   g.APIURL,
		Timeout:  g.Timeout,
		StateDir: g.StateDir,
		Tracing:  g.Tracing,
		Cache:    g.Cache,
		CacheDir: g.CacheDir,
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		out:      g.out(),
		prompt:   newPrompter(g.stdin, g.out()),
		shutdown: func() {},
	}

	if cfg.Tracing {
		shutdown, err := telemetry.InitTelemetry(ctx, "roomzy-cli", g.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
		} else {
			a.shutdown = func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Failed to shutdown telemetry")
				}
			}
		}
	}

	kv, err := storage.NewFileStore(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state store: %w", err)
	}

	a.tokens = storage.NewTokenStore(kv)

	clientCfg := cfg.Client()
	clientCfg.Logger = &log.Logger
	clientCfg.OnAuthFailure = func(loginPath string) {
		a.sessionLost = true
		log.Debug().Str("path", loginPath).Msg("session expired, login required")
	}
	a.client = apiclient.New(clientCfg, a.tokens)

	a.auth = service.NewAuthService(a.client)
	a.users = service.NewUserService(a.client)
	a.admin = service.NewAdminService(a.client)

	a.session = session.New(a.auth, kv)
	if err := a.session.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	return a, nil
}

func (a *app) close() {
	a.session.Close()
	a.shutdown()
}

// guarded runs the guard for a protected command and turns a redirect into
// an error telling the user what to run instead.
func (a *app) guarded(ctx context.Context, e guard.Evaluator) error {
	// A restored user without credentials is stale
	if a.session.Snapshot().User != nil && !a.auth.IsAuthenticated() {
		a.session.RefreshUser(ctx)
	}

	d := guard.Mount(ctx, a.session, e)
	return redirectError(d.Err(), a.sessionLost)
}

// Sentinel errors for denied commands.
var (
	ErrNotSignedIn     = errors.New("not signed in, run `roomzy login`")
	ErrSessionExpired  = errors.New("session expired, run `roomzy login`")
	ErrEmailUnverified = errors.New("email not verified, run `roomzy verify-email`")
	ErrAdminRequired   = errors.New("this command requires the admin role")
)

func redirectError(err error, sessionLost bool) error {
	var redirect *guard.RedirectError
	if !errors.As(err, &redirect) {
		return err
	}

	switch redirect.Path {
	case guard.DefaultLoginPath:
		if sessionLost {
			return ErrSessionExpired
		}
		return ErrNotSignedIn
	case guard.DefaultVerifyPath:
		return ErrEmailUnverified
	case guard.DefaultNonAdminPath:
		return ErrAdminRequired
	}
	return err
}

// apiError converts a failed API call into the error shown to the user. When
// the call lost the session the local state is reset as well.
func (a *app) apiError(ctx context.Context, err error, fallback string) error {
	if a.sessionLost {
		// Tokens are already cleared, so this resets locally without a request
		a.session.RefreshUser(ctx)
		return ErrSessionExpired
	}
	return errors.New(service.MessageOf(err, fallback))
}

// resultError converts an unsuccessful action result into an error.
func resultError(msg, fallback string) error {
	if msg == "" {
		msg = fallback
	}
	return errors.New(msg)
}
