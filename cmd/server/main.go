package main

import (
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/youruser/postcardapp/internal/api"
	"github.com/youruser/postcardapp/internal/assets"
	"github.com/youruser/postcardapp/internal/catalog"
	"github.com/youruser/postcardapp/internal/config"
	imagepkg "github.com/youruser/postcardapp/internal/image"
	"github.com/youruser/postcardapp/internal/postcard"
	"github.com/youruser/postcardapp/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	log := cfg.Logger()
	slog.SetDefault(log)

	cat, err := catalog.LoadFromDir(cfg.AssetsDir)
	if err != nil {
		log.Error("failed to load template library", "dir", cfg.AssetsDir, "err", err)
		os.Exit(1)
	}
	log.Info("template library loaded", "templates", len(cat.Templates), "previews", len(cat.Previews))

	var store assets.Store = assets.NewDirStore(cfg.AssetsDir)
	if cfg.AssetsURL != "" {
		store = &assets.HTTPStore{BaseURL: cfg.AssetsURL}
	}

	postcards, err := postcard.NewStore(cfg.OutputDir)
	if err != nil {
		log.Error("failed to open postcard store", "err", err)
		os.Exit(1)
	}

	var sessions session.Store = session.NewMemoryStore()
	if cfg.Session.Backend == "redis" {
		rs := session.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
		}), cfg.Session.Redis.Prefix, cfg.Session.TTL)
		defer rs.Close()
		sessions = rs
	}

	h := &api.Handlers{
		Catalog:      cat,
		Renderer:     imagepkg.NewRenderer(store, imagepkg.WithLogger(log), imagepkg.WithFontDirs(cfg.FontDirs...)),
		Postcards:    postcards,
		Sessions:     sessions,
		Conversation: session.NewConversation(cat),
		PublicURL:    cfg.PublicURL,
		Log:          log,
	}

	r := gin.Default()
	api.RegisterRoutes(r, h)

	log.Info("starting server", "addr", "http://localhost:"+cfg.Port, "sessions", cfg.Session.Backend)
	if err := r.Run(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
