package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"

	"github.com/iliyamo/space-reservation/internal/config"
	"github.com/iliyamo/space-reservation/internal/database"
	"github.com/iliyamo/space-reservation/internal/handler"
	"github.com/iliyamo/space-reservation/internal/middleware"
	"github.com/iliyamo/space-reservation/internal/queue"
	"github.com/iliyamo/space-reservation/internal/repository"
	"github.com/iliyamo/space-reservation/internal/reservation"
	"github.com/iliyamo/space-reservation/internal/router"
	"github.com/iliyamo/space-reservation/internal/service"
	"github.com/iliyamo/space-reservation/internal/utils"
)

// logLevel maps LOG_LEVEL to echo's logger levels, defaulting to INFO.
func logLevel(s string) glog.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return glog.DEBUG
	case "warn", "warning":
		return glog.WARN
	case "error":
		return glog.ERROR
	case "off":
		return glog.OFF
	default:
		return glog.INFO
	}
}

func main() {
	_ = godotenv.Load()  // a missing .env is fine outside development
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}
	rdb := config.NewRedisClient() // nil disables caching and rate limiting
	if rdb != nil {
		defer rdb.Close()
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS()) // guests open shared maps from browsers

	// ---- Repositories ----
	members := repository.NewMemberRepo(db)
	tokens := repository.NewTokenRepo(db)
	maps := repository.NewMapRepo(db)
	spaces := repository.NewSpaceRepo(db)
	presets := repository.NewPresetRepo(db)
	reservations := repository.NewReservationRepo(db)

	// ---- Services ----
	memberSvc := service.NewMemberService(members, tokens, reservations, service.AuthSettings{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	})
	mapSvc := service.NewMapService(maps, spaces, reservations)
	spaceSvc := service.NewSpaceService(maps, spaces, reservations)
	presetSvc := service.NewPresetService(presets)

	var notifier reservation.Notifier
	if qcfg := config.LoadQueueConfig(); qcfg.Enabled() {
		notifier = queue.NewPublisher(qcfg.URL, qcfg.Queue)
		e.Logger.Infof("publishing reservations to queue %q", qcfg.Queue)
	}
	reservationSvc := reservation.NewService(spaces, reservations, reservation.NewEngine(), notifier, e.Logger)
	reservationSvc.SetNotifyTimeout(cfg.NotifyTimeout)
	guest := reservation.GuestStrategy{Hash: utils.Hasher(cfg.GuestCost), Verify: utils.VerifyPassword}

	// ---- Handlers ----
	mapH := handler.NewMapHandler(mapSvc)
	spaceH := handler.NewSpaceHandler(spaceSvc)
	reservationH := handler.NewReservationHandler(reservationSvc, guest)

	cacheCfg := config.LoadCacheConfig()
	invalidate := middleware.NewCacheInvalidator(cacheCfg, rdb)

	router.RegisterRoutes(e, db) // Register application routes
	router.RegisterAuth(e, handler.NewAuthHandler(memberSvc, cfg.JWTSecret))
	router.RegisterManager(e, router.Manager{
		Members:      handler.NewMemberHandler(memberSvc),
		Presets:      handler.NewPresetHandler(presetSvc),
		Maps:         mapH,
		Spaces:       spaceH,
		Reservations: reservationH,
	}, cfg.JWTSecret, invalidate)
	router.RegisterGuest(e, router.Guest{
		Maps:         mapH,
		Spaces:       spaceH,
		Reservations: reservationH,
		RateLimit:    middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:        middleware.NewRedisCache(cacheCfg, rdb),
		Invalidate:   invalidate,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
