package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tasklet/internal/config"
	"tasklet/internal/media"
	"tasklet/internal/server"
	"tasklet/internal/store"
	"tasklet/internal/store/mongostore"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the tasklet API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if err := cfg.ValidateServer(); err != nil {
				return err
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			todos, err := openTodoStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer todos.Close()

			mediaStore, err := openMediaStore(cfg, logger)
			if err != nil {
				return err
			}

			srv := server.New(addr, todos, mediaStore, logger, server.Options{
				MaxUploadBytes:     cfg.Uploads.MaxUploadBytes,
				MultipartMaxMemory: cfg.Uploads.MultipartMaxMemory,
			})
			return srv.ListenAndServe(ctx)
		},
	}
}

// openTodoStore connects to the database db_url names. The handle is opened
// once here and shared by every request.
func openTodoStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.TodoStore, error) {
	if cfg.UsesMongo() {
		logger.Info("connecting to mongodb", "db_name", cfg.DBName)
		st, err := mongostore.Open(ctx, cfg.DBURL, cfg.DBName)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	logger.Info("opening database", "path", cfg.DBPath())
	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, err
	}
	return st, nil
}

func openMediaStore(cfg *config.Config, logger *slog.Logger) (media.Store, error) {
	switch cfg.Media.Backend {
	case config.MediaBackendCloudinary:
		logger.Info("using cloudinary media host", "cloud_name", cfg.Media.CloudName, "folder", cfg.Media.Folder)
		host, err := media.NewCloudinary(media.CloudinaryOptions{
			CloudName: cfg.Media.CloudName,
			APIKey:    cfg.Media.APIKey,
			APISecret: cfg.Media.APISecret,
			Folder:    cfg.Media.Folder,
			BaseURL:   cfg.Media.APIBase,
			Timeout:   cfg.Media.Timeout.Duration,
		})
		if err != nil {
			return nil, err
		}
		return host, nil
	default:
		logger.Info("using local media store", "root", cfg.Media.Root, "public_url", cfg.Media.PublicURL)
		local, err := media.NewLocal(cfg.Media.Root, cfg.Media.PublicURL)
		if err != nil {
			return nil, err
		}
		return local, nil
	}
}
