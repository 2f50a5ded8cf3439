package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"diskmirror/internal/utils"
)

const (
	DefaultInterval      = 60 * time.Second
	DefaultMaxConcurrent = 8
	DefaultLogFile       = "log/sync.log"
	DefaultLogLevel      = "info"
	DefaultLogFileLevel  = "debug"
	DefaultLogMaxSizeMB  = 1
)

var (
	ErrNoLocalDir  = errors.New("config: local sync folder is not a directory")
	ErrNoRemoteDir = errors.New("config: remote folder missing")
	ErrNoToken     = errors.New("config: oauth token missing")
	ErrBadInterval = errors.New("config: sync interval must be positive")
)

// Config holds everything the daemon reads from flags, the
// environment and an optional .env file. A config that fails
// validation is a startup-fatal condition; no cycle can run.
type Config struct {
	LocalDir      string        // local tree to mirror
	RemoteDir     string        // folder on Disk the tree is mirrored to
	Token         string        // OAuth token for the Disk API
	Interval      time.Duration // delay between the end of one cycle and the next
	MaxConcurrent int           // in-flight remote operation limit

	LogFile      string // rotated log file path
	LogLevel     string // console level
	LogFileLevel string // file level
	LogMaxSizeMB int    // rotation threshold
	LogCompress  bool   // gzip rotated files
}

func (c *Config) Validate() error {
	local, err := utils.ResolvePath(c.LocalDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoLocalDir, err)
	}
	if !utils.DirExists(local) {
		return fmt.Errorf("%w: %s", ErrNoLocalDir, local)
	}
	c.LocalDir = local

	if c.RemoteDir == "" {
		return ErrNoRemoteDir
	}

	if c.Token == "" {
		return ErrNoToken
	}

	if c.Interval <= 0 {
		return ErrBadInterval
	}

	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}

	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	if !filepath.IsAbs(c.LogFile) {
		if abs, err := filepath.Abs(c.LogFile); err == nil {
			c.LogFile = abs
		}
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFileLevel == "" {
		c.LogFileLevel = DefaultLogFileLevel
	}
	if c.LogMaxSizeMB <= 0 {
		c.LogMaxSizeMB = DefaultLogMaxSizeMB
	}

	return nil
}
