package main

import (
	"context"
	"flag"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/gokatarajesh/lgs-tracker/internal/app"
	"github.com/gokatarajesh/lgs-tracker/internal/config"
	"github.com/gokatarajesh/lgs-tracker/internal/curriculum"
)

func main() {
	var (
		envFile         = flag.String("env-file", "configs/.env", "dotenv file loaded outside production")
		printCurriculum = flag.Bool("print-curriculum", false, "print the active subject catalog as YAML and exit")
	)
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("app", "lgs-api").Logger()

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Warn().Err(err).Str("file", *envFile).Msg("could not load .env file")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if *printCurriculum {
		catalog, err := curriculum.Load(cfg.CurriculumFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.CurriculumFile).Msg("failed to load curriculum")
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(catalog); err != nil {
			log.Fatal().Err(err).Msg("failed to encode curriculum")
		}
		return
	}

	appCtx := context.Background()
	instance, err := app.New(appCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build app")
	}

	if err := instance.Run(appCtx); err != nil {
		log.Fatal().Err(err).Msg("runtime error")
	}
}
