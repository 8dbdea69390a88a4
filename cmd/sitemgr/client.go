package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/exec"
	"time"

	"sitemgr/internal/api"
	"sitemgr/internal/config"
)

const (
	serverStartTimeout = 3 * time.Second
	serverPollInterval = 100 * time.Millisecond
	serverPingTimeout  = 500 * time.Millisecond
)

// withClient runs fn against the configured API. When nothing answers on a
// loopback API URL, a temporary `sitemgr srv` child is started for the
// duration of the call.
func withClient(ctx context.Context, cfg *config.Config, fn func(*api.Client) error) error {
	if cfg == nil {
		return errors.New("config not initialized")
	}
	cleanup, err := ensureServer(ctx, cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	return fn(api.NewClient(cfg.APIURL))
}

func ensureServer(ctx context.Context, cfg *config.Config) (func(), error) {
	client := api.NewClient(cfg.APIURL)
	pingCtx, cancel := context.WithTimeout(ctx, serverPingTimeout)
	defer cancel()

	err := client.Ping(pingCtx)
	if err == nil {
		return nil, nil
	}
	if !isLoopbackURL(cfg.APIURL) {
		return nil, fmt.Errorf("server at %s is not reachable: %w", cfg.APIURL, err)
	}

	cmd, err := startServerProcess(cfg)
	if err != nil {
		return nil, err
	}

	if err := waitForServer(ctx, client, serverStartTimeout); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}

	cleanup := func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}

	return cleanup, nil
}

func startServerProcess(cfg *config.Config) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(exe, "srv")
	cmd.Env = append(os.Environ(),
		"SITEMGR_API_URL="+cfg.APIURL,
		"SITEMGR_DATA_DIR="+cfg.DataDir,
		"SITEMGR_UPLOADS_DIR="+cfg.UploadsDir,
	)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func waitForServer(ctx context.Context, client *api.Client, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		pingCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		err := client.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if !isConnRefused(err) {
			// Something else owns the port.
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(serverPollInterval):
		}
	}
	return errors.New("server did not start in time")
}

func isConnRefused(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func isLoopbackURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
