package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/galbox/galconsole/internal/http"
	"github.com/galbox/galconsole/internal/json"
	"github.com/galbox/galconsole/internal/logging"
	"github.com/galbox/galconsole/internal/mailbox"
	"github.com/galbox/galconsole/internal/probe"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const (
	probeTimeout   = 5 * time.Second
	sampleInterval = time.Second
)

func main() {
	app := &cli.App{
		Name:        "galconsole",
		Description: "local dashboard backend reporting wifi, memory, storage, cpu, docker and ollama state as json",
		Usage:       "serve the dashboard api",
		Version:     appVersion(),
		Flags:       flags(),
		CommandNotFound: func(c *cli.Context, command string) {
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
			cli.ShowAppHelpAndExit(c, 1)
		},
		Before: func(c *cli.Context) error {
			logging.Init(c.String("log-level"), c.Bool("log-pretty"))
			return nil
		},
		Action:       serve,
		BashComplete: cli.ShowCompletions,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("galconsole stopped")
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			EnvVars: []string{"PORT"},
			Value:   5421,
		},
		&cli.IntFlag{
			Name:    "ws-port",
			Usage:   "websocket push port, 0 disables it",
			EnvVars: []string{"WS_PORT"},
			Value:   3002,
		},
		&cli.StringFlag{
			Name:    "public-dir",
			EnvVars: []string{"PUBLIC_DIR"},
			Value:   "./public",
		},
		&cli.StringFlag{
			Name:    "images-dir",
			EnvVars: []string{"IMAGES_DIR"},
			Value:   "./public/images",
		},
		&cli.StringFlag{
			Name:    "name-file",
			EnvVars: []string{"NAME_FILE"},
			Value:   "./custom-name.json",
		},
		&cli.StringFlag{
			Name:    "default-name",
			EnvVars: []string{"DEFAULT_NAME"},
			Value:   "GalBox",
		},
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "keep the command mailbox in redis instead of process memory",
			EnvVars: []string{"REDIS_ADDR"},
		},
		&cli.StringFlag{
			Name:    "redis-password",
			EnvVars: []string{"REDIS_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "storage-mount",
			EnvVars: []string{"STORAGE_MOUNT"},
			Value:   "/",
		},
		&cli.StringFlag{
			Name:    "storage-fallback-mount",
			EnvVars: []string{"STORAGE_FALLBACK_MOUNT"},
			Value:   "/System/Volumes/Data",
		},
		&cli.StringFlag{
			Name:    "es-filter",
			Usage:   "docker name filter for elasticsearch containers",
			EnvVars: []string{"ES_FILTER"},
			Value:   "elasticsearch",
		},
		&cli.DurationFlag{
			Name:    "command-timeout",
			EnvVars: []string{"COMMAND_TIMEOUT"},
			Value:   probeTimeout,
		},
		&cli.DurationFlag{
			Name:    "command-ttl",
			Usage:   "how long a posted command stays in the mailbox",
			EnvVars: []string{"COMMAND_TTL"},
			Value:   mailbox.DefaultTTL,
		},
		&cli.DurationFlag{
			Name:    "sample-interval",
			EnvVars: []string{"SAMPLE_INTERVAL"},
			Value:   sampleInterval,
		},
		&cli.StringSliceFlag{
			Name:    "cors-origin",
			EnvVars: []string{"CORS_ORIGINS"},
			Value:   cli.NewStringSlice(http.DefaultCORSOrigins...),
		},
		&cli.StringFlag{
			Name:    "discovery-token",
			EnvVars: []string{"DISCOVERY_TOKEN"},
			Value:   "galbox",
		},
		&cli.BoolFlag{
			Name:    "h2c",
			Usage:   "serve cleartext HTTP/2",
			EnvVars: []string{"H2C"},
		},
		&cli.BoolFlag{
			Name:    "hardware",
			Usage:   "report memory modules and drive models",
			EnvVars: []string{"HARDWARE"},
			Value:   true,
		},
		&cli.StringFlag{
			Name:    "log-level",
			EnvVars: []string{"LOG_LEVEL"},
			Value:   "info",
		},
		&cli.BoolFlag{
			Name:    "log-pretty",
			EnvVars: []string{"LOG_PRETTY"},
		},
	}
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	names, err := json.New(c.String("name-file"), c.String("default-name"))
	if err != nil {
		return fmt.Errorf("failed to create name store: %w", err)
	}

	box, closeBox, err := newMailbox(ctx, c)
	if err != nil {
		return err
	}
	defer closeBox()

	prober := probe.New(probe.ExecRunner{Timeout: c.Duration("command-timeout")}, probe.Options{
		StorageMount:         c.String("storage-mount"),
		StorageFallbackMount: c.String("storage-fallback-mount"),
		ESFilter:             c.String("es-filter"),
		Hardware:             c.Bool("hardware"),
	})

	server := http.New(http.Config{
		Port:           c.Int("port"),
		WSPort:         c.Int("ws-port"),
		PublicDir:      c.String("public-dir"),
		ImagesDir:      c.String("images-dir"),
		CORSOrigins:    c.StringSlice("cors-origin"),
		DiscoveryToken: c.String("discovery-token"),
		SampleInterval: c.Duration("sample-interval"),
		H2C:            c.Bool("h2c"),
	}, prober, names, box).Routes()

	log.Info().
		Str("version", c.App.Version).
		Str("platform", prober.GOOS()).
		Msg("starting galconsole")
	return server.Serve(ctx)
}

func newMailbox(ctx context.Context, c *cli.Context) (mailbox.Store, func(), error) {
	ttl := c.Duration("command-ttl")
	addr := c.String("redis-addr")
	if addr == "" {
		s := mailbox.NewMemoryStore(ttl)
		return s, func() { s.Close() }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: c.String("redis-password"),
	})
	s := mailbox.NewRedisStore(client, ttl)
	if err := s.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	log.Info().Str("addr", addr).Msg("command mailbox backed by redis")
	return s, func() { client.Close() }, nil
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return "unknown"
	}

	version := bi.Main.Version
	var rev string
	var modified bool
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}

	if version != "" && version != "(devel)" {
		return version
	}
	if rev != "" {
		if modified {
			return rev + " (modified)"
		}
		return rev
	}
	if version != "" {
		return version
	}
	return "unknown"
}
