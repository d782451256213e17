package main

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"os/exec"
	"time"

	"tasklet/internal/api"
	"tasklet/internal/config"
)

const (
	serverStartTimeout = 3 * time.Second
	serverPollInterval = 100 * time.Millisecond
)

func withClient(cfg *config.Config, fn func(*api.Client) error) error {
	cleanup, err := ensureServer(cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	client := api.NewClient(cfg.APIURL)
	return fn(client)
}

// ensureServer starts a local srv process when nothing answers at api_url.
// The returned cleanup stops it.
func ensureServer(cfg *config.Config) (func(), error) {
	client := api.NewClient(cfg.APIURL)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := client.Ping(ctx); err == nil {
		return nil, nil
	}

	cmd, err := startServerProcess(cfg)
	if err != nil {
		return nil, err
	}

	if err := waitForServer(client, serverStartTimeout); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}

	cleanup := func() {
		_ = cmd.Process.Signal(os.Interrupt)
		done := make(chan struct{})
		go func() {
			_ = cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	return cleanup, nil
}

func startServerProcess(cfg *config.Config) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(exe, "srv")
	cmd.Env = append(os.Environ(), serverEnv(cfg)...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// serverEnv pins the child server to the settings this process resolved.
func serverEnv(cfg *config.Config) []string {
	return []string{
		"TASKLET_DB_URL=" + cfg.DBURL,
		"TASKLET_DB_NAME=" + cfg.DBName,
		"TASKLET_API_URL=" + cfg.APIURL,
		"TASKLET_MEDIA_BACKEND=" + cfg.Media.Backend,
		"TASKLET_MEDIA_ROOT=" + cfg.Media.Root,
		"TASKLET_MEDIA_PUBLIC_URL=" + cfg.Media.PublicURL,
	}
}

func waitForServer(client *api.Client, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		err := client.Ping(ctx)
		cancel()
		if err == nil {
			return nil
		}
		if !isConnRefused(err) {
			// Port is taken by something that is not a tasklet server.
			return err
		}
		time.Sleep(serverPollInterval)
	}
	return errors.New("server did not start in time")
}

func isConnRefused(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
