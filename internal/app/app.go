package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playerfinder/playerfinder/internal/config"
	"github.com/playerfinder/playerfinder/internal/db"
	"github.com/playerfinder/playerfinder/internal/groups"
	"github.com/playerfinder/playerfinder/internal/http/api"
	"github.com/playerfinder/playerfinder/internal/mail"
	"github.com/playerfinder/playerfinder/internal/passwords"
	"github.com/playerfinder/playerfinder/internal/ratelimit"
	"github.com/playerfinder/playerfinder/internal/scheduler"
	"github.com/playerfinder/playerfinder/internal/sessions"
	"github.com/playerfinder/playerfinder/internal/users"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.Config) error {
	conn, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer closeDatabase(conn)
	return db.Migrate(conn.WithContext(ctx))
}

// RunServer migrates the database, starts the token pruner and serves the API until ctx is done.
func RunServer(ctx context.Context, cfg config.Config) error {
	if cfg.JWT.Secret == "" {
		return errors.New("jwt secret is not configured")
	}

	conn, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer closeDatabase(conn)
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	sessionService := sessions.NewService(conn, cfg.JWT)
	passwordService := passwords.NewService(conn, mail.New(cfg.Mail), cfg.PasswordReset.TokenTTL)

	limiter := ratelimit.NewManager(ratelimit.StaticSettings(ratelimit.SettingsFromConfig(cfg.RateLimit)), nil, nil)
	defer func() {
		if errClose := limiter.Close(); errClose != nil {
			log.WithError(errClose).Warn("rate limit: close redis client")
		}
	}()

	jobs, err := scheduler.New()
	if err != nil {
		return err
	}
	if errAdd := jobs.AddIntervalJob("prune-api-tokens", cfg.PruneInterval, scheduler.PruneJob("api-tokens", sessionService)); errAdd != nil {
		return errAdd
	}
	if errAdd := jobs.AddIntervalJob("prune-reset-tokens", cfg.PruneInterval, scheduler.PruneJob("reset-tokens", passwordService)); errAdd != nil {
		return errAdd
	}
	jobs.Start()
	defer func() {
		if errStop := jobs.Stop(); errStop != nil {
			log.WithError(errStop).Warn("scheduler: shutdown")
		}
	}()

	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := api.NewEngine(api.Deps{
		DB:          conn,
		Users:       users.NewService(conn),
		Sessions:    sessionService,
		Passwords:   passwordService,
		Groups:      groups.NewService(conn),
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
	}()

	log.Infof("starting playerfinder on %s", srv.Addr)
	if errListen := srv.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
		return errListen
	}
	log.Info("server stopped")
	return nil
}

// openDatabase opens the configured database and logs where it points.
func openDatabase(dsn string) (*gorm.DB, error) {
	if info, errDescribe := db.DescribeDSN(dsn); errDescribe == nil {
		log.WithField("database", info.String()).Info("opening database")
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return conn, nil
}

func closeDatabase(conn *gorm.DB) {
	sqlDB, err := conn.DB()
	if err != nil {
		return
	}
	if errClose := sqlDB.Close(); errClose != nil {
		log.Errorf("sql db close error: %v", errClose)
	}
}
