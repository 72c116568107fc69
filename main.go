package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iburimskiy/countdown-fireworks/internal/audio"
	"github.com/iburimskiy/countdown-fireworks/internal/config"
	"github.com/iburimskiy/countdown-fireworks/internal/game"
	"github.com/iburimskiy/countdown-fireworks/internal/term"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		frontend   = flag.String("frontend", "", "Frontend to run (window|terminal)")
		minutes    = flag.Int("minutes", -1, "Initial minutes field value")
		seconds    = flag.Int("seconds", -1, "Initial seconds field value")
		mute       = flag.Bool("mute", false, "Disable the alert tone")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *frontend != "" {
		cfg.Frontend = strings.ToLower(*frontend)
	}
	if *minutes >= 0 {
		cfg.Timer.Minutes = *minutes
	}
	if *seconds >= 0 {
		cfg.Timer.Seconds = *seconds
	}
	if *mute {
		cfg.Audio.Mute = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logFile := setupLogging(cfg)
	if logFile != nil {
		defer logFile.Close()
	}

	player := audio.NewPlayer(audio.Options{
		SampleRate: cfg.Audio.SampleRate,
		Buffer:     cfg.Audio.Buffer.Duration,
		Mute:       cfg.Audio.Mute,
		TapSize:    config.LevelRingSize,
		Tone: audio.ToneSpec{
			StartFreq: cfg.Audio.StartFreq,
			EndFreq:   cfg.Audio.EndFreq,
			Sweep:     cfg.Audio.Sweep.Duration,
			StartGain: cfg.Audio.StartGain,
			EndGain:   cfg.Audio.EndGain,
			Length:    cfg.Audio.Length.Duration,
		},
	})
	defer player.Close()

	log.Info().
		Str("frontend", cfg.Frontend).
		Int("minutes", cfg.Timer.Minutes).
		Int("seconds", cfg.Timer.Seconds).
		Bool("mute", cfg.Audio.Mute).
		Msg("starting countdown")

	switch cfg.Frontend {
	case config.FrontendTerminal:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = term.Run(ctx, cfg, player)
	default:
		err = game.Run(cfg, player)
	}
	if err != nil {
		log.Error().Err(err).Msg("frontend exited with error")
		os.Exit(1)
	}
}

// setupLogging applies the configured level. The terminal frontend owns the
// screen, so its logs go to cfg.LogFile or nowhere.
func setupLogging(cfg *config.Config) *os.File {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer
	var f *os.File
	switch {
	case cfg.LogFile != "":
		f, err = os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.LogFile).Msg("failed to open log file")
		}
		out = f
	case cfg.Frontend == config.FrontendTerminal:
		out = io.Discard
	default:
		return nil
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return f
}
