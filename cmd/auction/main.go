package main

import (
	"log"
	"os"
	"time"

	v1 "go_auction/api/v1"
	"go_auction/internal/audit"
	"go_auction/internal/auction"
	"go_auction/internal/auth"
	"go_auction/internal/cache"
	"go_auction/internal/category"
	"go_auction/internal/config"
	"go_auction/internal/db"
	"go_auction/internal/images"
	"go_auction/internal/member"
	"go_auction/internal/rowmap"
	"go_auction/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.Printf("✓ Configuration loaded (db source: %s)", cfg.DB.Source)

	rowmap.SetCurrencySymbol(cfg.Currency)
	auth.InitJWT(cfg.JWT.Secret)

	logger := logrus.NewEntry(logrus.StandardLogger())

	// 2. Initialize MySQL
	if err := db.InitMySQL(cfg.DB.DSN); err != nil {
		log.Fatalf("Failed to initialize MySQL: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Migrate {
		if err := db.Migrate(db.GetDB()); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
			os.Exit(1)
		}
		log.Println("✓ Migration complete")
	}

	// 3. Initialize Redis
	if err := cache.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
		os.Exit(1)
	}
	defer cache.Close()

	// 4. Initialize Socket.IO
	if err := ws.InitServer(); err != nil {
		log.Fatalf("Failed to initialize Socket.IO: %v", err)
		os.Exit(1)
	}
	defer ws.Close()

	// 5. Build services
	pool := db.SQL()
	imageSvc := images.NewService(pool, cfg.Uploads, logger)
	deps := v1.Deps{
		Cfg:        cfg,
		Auctions:   auction.NewService(pool, imageSvc, logger),
		Members:    member.NewService(pool, logger),
		Images:     imageSvc,
		Categories: category.NewService(pool, logger),
		Audit:      audit.NewRecorder(db.GetDB(), logger),
		Lockout: auth.NewLockout(
			cfg.Lockout.MaxAttempts,
			time.Duration(cfg.Lockout.WindowSec)*time.Second,
			time.Duration(cfg.Lockout.LockoutSec)*time.Second,
		),
	}

	// 6. Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	v1.SetupRouter(r, deps)

	log.Printf("✓ Server starting on %s", cfg.HTTPAddr)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
