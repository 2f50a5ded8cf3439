package client

import (
	"context"
	"fmt"
	"log/slog"

	"diskmirror/internal/client/config"
	"diskmirror/internal/client/mirror"
	"diskmirror/internal/client/workspace"
	"diskmirror/internal/disksdk"
)

// Client wires the workspace, the Disk SDK and the mirror engine into
// the long-running daemon
type Client struct {
	config *config.Config
	ws     *workspace.Workspace
	sdk    *disksdk.DiskSDK
	cache  *mirror.HashCache
	engine *mirror.Engine
}

func New(cfg *config.Config) (*Client, error) {
	ws, err := workspace.NewWorkspace(cfg.LocalDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	sdk, err := disksdk.New(&disksdk.DiskSDKConfig{
		Token:  cfg.Token,
		Folder: cfg.RemoteDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sdk: %w", err)
	}

	cache, err := mirror.NewHashCache(ws.CachePath())
	if err != nil {
		return nil, fmt.Errorf("failed to create hash cache: %w", err)
	}

	engine := mirror.NewEngine(ws, sdk.Resources, cache, cfg.Interval, cfg.MaxConcurrent)

	return &Client{
		config: cfg,
		ws:     ws,
		sdk:    sdk,
		cache:  cache,
		engine: engine,
	}, nil
}

func (c *Client) Start(ctx context.Context) error {
	slog.Info("diskmirror client start",
		"local", c.config.LocalDir,
		"remote", c.config.RemoteDir,
		"interval", c.config.Interval,
		"concurrency", c.config.MaxConcurrent,
	)

	if err := c.ws.Lock(); err != nil {
		return err
	}
	defer c.ws.Unlock()

	err := c.engine.Run(ctx)

	c.sdk.Close()
	if cerr := c.cache.Close(); cerr != nil {
		slog.Warn("failed to close hash cache", "error", cerr)
	}

	slog.Info("diskmirror client stop")
	return err
}
