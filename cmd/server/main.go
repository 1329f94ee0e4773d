package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"casework/internal/casework"
	caseworkmetrics "casework/internal/casework/metrics"
	"casework/internal/casework/service"
	caseworkstore "casework/internal/casework/store"
	"casework/internal/commit"
	"casework/internal/journey/draft"
	"casework/internal/notify"
	"casework/internal/platform/config"
	"casework/internal/platform/httpserver"
	"casework/internal/platform/logger"
	platformredis "casework/internal/platform/redis"
	httptransport "casework/internal/transport/http"
	"casework/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New()

	if cfg.DatabaseURL == "" {
		log.Error("CASEWORK_DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}

	var drafts draft.Store
	pingers := map[string]httptransport.Pinger{"postgres": dbPinger{db}}
	if redisClient != nil {
		drafts = draft.NewRedis(redisClient.Client, config.DraftTTL)
		pingers["redis"] = redisClient
		defer redisClient.Close()
	} else {
		log.Warn("redis not configured, drafts held in memory")
		drafts = draft.NewInMemoryStore()
	}

	var publisher notify.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := notify.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("failed to connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		publisher = notify.NewBreaking(kafka, circuit.New("kafka"), log)
	} else {
		log.Warn("kafka not configured, case events disabled")
	}

	cases := caseworkstore.NewPostgres(db)
	executor := commit.NewPostgresExecutor(db, casework.Tables())
	m := caseworkmetrics.New()

	svc := service.New(
		casework.Definitions(),
		map[string][]casework.Prerequisite{casework.CrownJourneyID: casework.CrownPrerequisites()},
		cases,
		caseworkstore.StaticGroups{Groups: []string{"caseworkers"}},
		drafts,
		casework.NewMapper(),
		executor,
		publisher,
		m,
		log,
	)

	handler := httptransport.New(svc, log, pingers)
	router := httptransport.NewRouter(handler)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting casework server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

type dbPinger struct{ db *sql.DB }

func (p dbPinger) Health(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
