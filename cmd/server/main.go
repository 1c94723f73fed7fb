// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/tablemate-app/tablemate/internal/auth"
	"github.com/tablemate-app/tablemate/internal/config"
	"github.com/tablemate-app/tablemate/internal/database"
	"github.com/tablemate-app/tablemate/internal/engine"
	"github.com/tablemate-app/tablemate/internal/handlers"
	"github.com/tablemate-app/tablemate/internal/middleware"
	"github.com/tablemate-app/tablemate/internal/notify"
	"github.com/tablemate-app/tablemate/internal/scoring"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	if cfg.JWTPrivateKeyPath != "" {
		if err := auth.InitFromPath(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath); err != nil {
			log.Fatalf("jwt key error: %v", err)
		}
	} else {
		auth.Init()
	}
	database.ConnectDB(cfg)
	if err := notify.ConnectRedis(cfg.RedisAddr, cfg.RedisDB); err != nil {
		log.Fatalf("redis error: %v", err)
	}

	runner := &engine.Runner{
		Store:          database.NewStore(),
		Scorer:         scoring.NewClient(cfg.ScoreAPIURL),
		Notifier:       &notify.Publisher{Client: notify.Rdb},
		Locker:         &notify.RunLock{Client: notify.Rdb},
		Logger:         logger,
		GroupMin:       cfg.GroupMin,
		GroupMax:       cfg.GroupMax,
		ChunkSize:      cfg.ChunkSize,
		ScoreThreshold: cfg.ScoreThreshold,
		ScoreBatch:     cfg.ScoreBatch,
		Budget:         10 * time.Minute,
	}

	matches := &handlers.MatchHandler{
		Runner: runner,
		Secret: cfg.AutomationSecret,
		Logger: logger,
	}

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods("GET")

	r.HandleFunc("/admin/login", handlers.AdminLoginHandler).Methods("POST")

	logged := middleware.LogMiddleware(logger)
	r.Handle("/matches/run", logged(http.HandlerFunc(matches.RunScored))).Methods("POST")
	r.Handle("/matches/run/weekend", logged(http.HandlerFunc(matches.RunWeekend))).Methods("POST")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Automation-Secret"},
		AllowCredentials: true,
	}).Handler(r)

	addr := ":" + cfg.Port
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, corsHandler); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
