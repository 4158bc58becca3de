package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rbc/experiments"
	"rbc/experiments/metrics"
	"rbc/meta"
)

// Flag defaults may be overridden from the environment or a .env file.
func envInt(name string, def int) int {
	n, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return def
	}
	return n
}

func envFloat(name string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(name), 64)
	if err != nil {
		return def
	}
	return f
}

func envDuration(name string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(name))
	if err != nil {
		return def
	}
	return d
}

func envString(name, def string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	games := flag.Int("games", envInt("RBC_GAMES", 1), "Number of self-play games")
	goroutines := flag.Int("goroutines", envInt("RBC_GOROUTINES", 1), "Number of games played in parallel")
	iterations := flag.Int("iterations", envInt("RBC_ITERATIONS", meta.ITERATIONS), "CFR iterations per decision")
	duration := flag.Duration("duration", envDuration("RBC_DURATION", meta.DURATION), "Wall-clock budget per decision, 0 for none")
	depth := flag.Int("depth", envInt("RBC_DEPTH", meta.DEPTH), "Action depth of each sub-decision")
	leafDepth := flag.Int("leaf-depth", envInt("RBC_LEAF_DEPTH", meta.LEAF_DEPTH), "Alpha-beta depth at leaves")
	candidates := flag.Int("candidates", envInt("RBC_CANDIDATES", meta.MAX_CANDIDATES), "Possible boards kept per sub-decision")
	maxTurns := flag.Int("max-turns", envInt("RBC_MAX_TURNS", meta.MAX_TURNS), "Turns after which a game is drawn")
	temperature := flag.Float64("temperature", envFloat("RBC_TEMPERATURE", 0), "Sample actions at this temperature, 0 plays the most probable action")
	seed := flag.Int("seed", envInt("RBC_SEED", meta.SEED), "Seed of the agents' randomness")
	out := flag.String("out", envString("RBC_OUT", "experiments"), "Directory receiving CSV records")
	verbose := flag.Bool("v", os.Getenv("RBC_DEBUG") != "", "Log every turn and solve")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	config := metrics.AgentConfig{
		ID:            1,
		Iterations:    *iterations,
		Duration:      *duration,
		Depth:         *depth,
		LeafDepth:     *leafDepth,
		MaxCandidates: *candidates,
		Temperature:   *temperature,
	}
	dir, err := experiments.Run(ctx, experiments.Experiment{
		Name:       "self_play",
		Dir:        *out,
		Configs:    []metrics.AgentConfig{config},
		MatchUps:   []experiments.MatchUp{{White: config, Black: config}},
		Games:      *games,
		MaxTurns:   *maxTurns,
		Goroutines: *goroutines,
		Seed:       uint64(*seed),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("self-play failed")
	}
	log.Info().Str("dir", dir).Msg("stored records")
}
