package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BloggingApp/post-store/internal/config"
	"github.com/BloggingApp/post-store/internal/handler"
	"github.com/BloggingApp/post-store/internal/logger"
	"github.com/BloggingApp/post-store/internal/metrics"
	"github.com/BloggingApp/post-store/internal/repository"
	"github.com/BloggingApp/post-store/internal/server"
	"github.com/BloggingApp/post-store/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "post-store",
		Short:         "Blog post store backed by a single JSON file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing app.yaml")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newBootstrapCommand(&configPath))
	rootCmd.AddCommand(newListCommand(&configPath))

	return rootCmd
}

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Seed the store if needed and start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(*configPath)
		},
	}
}

func newBootstrapCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Write the seed posts if the backing file does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			created, err := repository.New(cfg.Store.Path, nil, cfg.Redis.TTL).File.Bootstrap()
			if err != nil {
				return fmt.Errorf("failed to bootstrap %s: %w", cfg.Store.Path, err)
			}

			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s with seed posts\n", cfg.Store.Path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, left unchanged\n", cfg.Store.Path)
			}
			return nil
		},
	}
}

func newListCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every post as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			repos := repository.New(cfg.Store.Path, nil, cfg.Redis.TTL)
			services := service.New(zap.NewNop(), repos, metrics.New())

			posts, err := services.Post.ListPosts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list posts: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "    ")
			return enc.Encode(posts)
		},
	}
}

func runServer(configPath string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer log.Sync()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pong, err := rdb.Ping(ctx).Result()
		if err != nil {
			return fmt.Errorf("failed to ping redis: %w", err)
		}
		log.Sugar().Infof("Successfully connected to Redis: %s", pong)
	}

	repos := repository.New(cfg.Store.Path, rdb, cfg.Redis.TTL)
	created, err := repos.File.Bootstrap()
	if err != nil {
		return fmt.Errorf("failed to bootstrap %s: %w", cfg.Store.Path, err)
	}
	if created {
		log.Sugar().Infof("Seeded %s with default posts", cfg.Store.Path)
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	services := service.New(log, repos, m)
	handlers := handler.New(services, log, m, handler.Options{
		ClientOrigin:   cfg.Client.Origin,
		RateLimitRPS:   cfg.Security.RateLimitRPS,
		RateLimitBurst: cfg.Security.RateLimitBurst,
		MetricsEnabled: cfg.Metrics.Enabled,
	})

	srv := server.New(config.ServerConfig{
		Port:           cfg.App.Port,
		Handler:        handlers.InitRoutes(),
		MaxHeaderBytes: 1 << 20,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	log.Sugar().Infof("Server started on port %s", cfg.App.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to run http server: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	return nil
}
