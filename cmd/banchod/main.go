// Package main provides the bancho server binary that osu! clients poll
// for chat, presence and multiplayer.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/jeenyuhs/Ragnarok/internal/bancho"
	"github.com/jeenyuhs/Ragnarok/internal/beatmap"
	"github.com/jeenyuhs/Ragnarok/internal/command"
	"github.com/jeenyuhs/Ragnarok/internal/config"
	"github.com/jeenyuhs/Ragnarok/internal/game/channel"
	"github.com/jeenyuhs/Ragnarok/internal/game/confirm"
	"github.com/jeenyuhs/Ragnarok/internal/game/dice"
	"github.com/jeenyuhs/Ragnarok/internal/game/match"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/observability"
	"github.com/jeenyuhs/Ragnarok/internal/server"
	"github.com/jeenyuhs/Ragnarok/internal/storage/postgres"
	transporthttp "github.com/jeenyuhs/Ragnarok/internal/transport/http"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "banchod")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var store *postgres.Store
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		store = postgres.NewStore(pool.DB())
	} else {
		logger.Warn("database disabled, logins will be refused")
	}

	sessions := session.NewRegistry()
	channels := channel.NewRegistry(sessions, logger)
	seedChannels(ctx, cfg.Bancho, store, channels, logger)

	bot := session.NewBot(cfg.Bancho.BotID, cfg.Bancho.BotName, time.Now())
	if err := sessions.Register(bot); err != nil {
		logger.Fatal("registering bot", zap.Error(err))
	}

	matches := match.NewService(match.NewRegistry(), sessions, channels, logger)
	broker := confirm.NewBroker()
	roller := dice.NewRoller(dice.NewCryptoSource(), logger)
	commands := command.NewExecutor(command.Options{
		Prefix:         cfg.Bancho.CommandPrefix,
		ConfirmTimeout: cfg.Bancho.ConfirmTimeout,
	}, sessions, matches, broker, roller, logger)

	deps := bancho.Deps{
		Sessions: sessions,
		Channels: channels,
		Matches:  matches,
		Commands: commands,
		Confirm:  broker,
		Bot:      bot,
		Logger:   logger,
	}
	if store != nil {
		deps.Users = store.Users
		deps.Friends = store.Friends
		deps.Verifier = postgres.NewVerifier(cfg.Bancho.AuthCacheTTL)
		deps.Beatmaps = beatmap.NewCached(store.Beatmaps, cfg.Beatmap.CacheTTL, logger)
	}
	srv := bancho.NewServer(bancho.Config{
		MenuIcon:       cfg.Bancho.MenuIcon,
		WelcomeMessage: cfg.Bancho.WelcomeMessage,
	}, deps)

	sweeper := session.NewSweeper(sessions, cfg.Bancho.SweepInterval, cfg.Bancho.SessionTimeout, srv.Logout, logger)

	router := transporthttp.NewRouter(transporthttp.NewHandlers(srv, logger), logger, cfg.Server.Debug)
	httpServer := transporthttp.NewServer(cfg.HTTP, router, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("commands", commands)
	lifecycle.Add("sweeper", sweeper)
	lifecycle.Add("http", httpServer)

	logger.Info("bancho initialized",
		zap.String("domain", cfg.Server.Domain),
		zap.String("addr", httpServer.Addr()),
		zap.Int("channels", len(channels.All())),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("bancho stopped", zap.Error(err))
		return
	}
}

// seedChannels loads the channel catalogue from the database, falling back
// to the channels file, and makes sure the lobby exists.
func seedChannels(ctx context.Context, cfg config.BanchoConfig, store *postgres.Store, channels *channel.Registry, logger *zap.Logger) {
	var opts []channel.Options
	if store != nil {
		loaded, err := store.Channels.All(ctx)
		if err != nil {
			logger.Error("loading channels from database", zap.Error(err))
		}
		opts = loaded
	}
	if len(opts) == 0 && cfg.ChannelsFile != "" {
		loaded, err := channel.LoadFile(cfg.ChannelsFile)
		if err != nil {
			logger.Error("loading channels file", zap.String("path", cfg.ChannelsFile), zap.Error(err))
		}
		opts = loaded
	}
	added := channels.Seed(opts)

	if channels.Lobby() == nil {
		if err := channels.Add(channel.New(channel.Options{
			Name:   channel.Lobby,
			Topic:  "Multiplayer lobby discussion.",
			Public: true,
		})); err != nil {
			logger.Fatal("creating lobby channel", zap.Error(err))
		}
		added++
	}
	logger.Info("channels seeded", zap.Int("count", added))
}
