package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/jamroom/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	secret = configVar[string]{
		envKey:       "SERVER_SECRET",
		flagKey:      "secret",
		defaultValue: "",
		usage:        "Access token signing secret",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
	roomTTL = configVar[time.Duration]{
		envKey:       "SERVER_ROOM_TTL",
		flagKey:      "room-ttl",
		defaultValue: 24 * time.Hour,
		usage:        "How long an untouched room is kept",
	}
	reconcileInterval = configVar[time.Duration]{
		envKey:       "SERVER_RECONCILE_INTERVAL",
		flagKey:      "reconcile-interval",
		defaultValue: 10 * time.Second,
		usage:        "Interval between provider polls",
	}
	reconcileConcurrency = configVar[int]{
		envKey:       "SERVER_RECONCILE_CONCURRENCY",
		flagKey:      "reconcile-concurrency",
		defaultValue: 8,
		usage:        "Rooms polled in parallel",
	}
	spotifyClientId = configVar[string]{
		envKey:       "SPOTIFY_CLIENT_ID",
		flagKey:      "spotify-client-id",
		defaultValue: "",
		usage:        "Spotify application client id",
	}
	spotifyClientSecret = configVar[string]{
		envKey:       "SPOTIFY_CLIENT_SECRET",
		flagKey:      "spotify-client-secret",
		defaultValue: "",
		usage:        "Spotify application client secret",
	}
	websiteURL = configVar[string]{
		envKey:       "WEBSITE_URL",
		flagKey:      "website-url",
		defaultValue: "http://localhost:3000",
		usage:        "Public URL of the web client",
	}
	accessTokenTTL = configVar[time.Duration]{
		envKey:       "SERVER_ACCESS_TOKEN_TTL",
		flagKey:      "access-token-ttl",
		defaultValue: 5 * time.Hour,
		usage:        "Lifetime of member access tokens",
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	pflag.String(secret.flagKey, secret.defaultValue, secret.usage)
	pflag.Int(port.flagKey, port.defaultValue, port.usage)
	pflag.String(host.flagKey, host.defaultValue, host.usage)
	pflag.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	pflag.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)
	pflag.Duration(roomTTL.flagKey, roomTTL.defaultValue, roomTTL.usage)
	pflag.Duration(reconcileInterval.flagKey, reconcileInterval.defaultValue, reconcileInterval.usage)
	pflag.Int(reconcileConcurrency.flagKey, reconcileConcurrency.defaultValue, reconcileConcurrency.usage)
	pflag.String(spotifyClientId.flagKey, spotifyClientId.defaultValue, spotifyClientId.usage)
	pflag.String(spotifyClientSecret.flagKey, spotifyClientSecret.defaultValue, spotifyClientSecret.usage)
	pflag.String(websiteURL.flagKey, websiteURL.defaultValue, websiteURL.usage)
	pflag.Duration(accessTokenTTL.flagKey, accessTokenTTL.defaultValue, accessTokenTTL.usage)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(secret)
	bind(port)
	bind(host)
	bind(logLevel)
	bind(redisPort)
	bind(redisHost)
	bind(redisPassword)
	bind(roomTTL)
	bind(reconcileInterval)
	bind(reconcileConcurrency)
	bind(spotifyClientId)
	bind(spotifyClientSecret)
	bind(websiteURL)
	bind(accessTokenTTL)

	config := &app.AppConfig{
		Secret:               viper.GetString(secret.flagKey),
		Host:                 viper.GetString(host.flagKey),
		Port:                 viper.GetInt(port.flagKey),
		LogLevel:             viper.GetString(logLevel.flagKey),
		RedisPort:            viper.GetInt(redisPort.flagKey),
		RedisHost:            viper.GetString(redisHost.flagKey),
		RedisPassword:        viper.GetString(redisPassword.flagKey),
		RoomTTL:              viper.GetDuration(roomTTL.flagKey),
		ReconcileInterval:    viper.GetDuration(reconcileInterval.flagKey),
		ReconcileConcurrency: viper.GetInt(reconcileConcurrency.flagKey),
		SpotifyClientId:      viper.GetString(spotifyClientId.flagKey),
		SpotifyClientSecret:  viper.GetString(spotifyClientSecret.flagKey),
		WebsiteURL:           viper.GetString(websiteURL.flagKey),
		AccessTokenTTL:       viper.GetDuration(accessTokenTTL.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}
