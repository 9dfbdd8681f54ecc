package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"skyline/flightsync/internal/auth"
	"skyline/flightsync/internal/config"
	"skyline/flightsync/internal/db"
)

// api_key_gen creates credentials for the /flights endpoints: an api_keys row, or a
// signed bearer token when -token is given.
func main() {
	token := flag.Bool("token", false, "issue a JWT bearer token instead of an API key")
	subject := flag.String("sub", "operator", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if *token {
		if cfg.JWTSecret == "" {
			log.Fatal("JWT_SECRET is not set")
		}
		signed, err := auth.NewTokenSigner([]byte(cfg.JWTSecret)).IssueToken(*subject, *ttl)
		if err != nil {
			log.Fatalf("issue token: %v", err)
		}
		fmt.Println("New bearer token:", signed)
		return
	}

	conn, err := db.InitPostgres(cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS api_keys (id TEXT PRIMARY KEY, status BOOLEAN NOT NULL DEFAULT TRUE)`); err != nil {
		log.Fatalf("create api_keys: %v", err)
	}

	id := uuid.New().String()
	if _, err := conn.Exec(`INSERT INTO api_keys (id, status) VALUES ($1, true)`, id); err != nil {
		log.Fatalf("insert api key: %v", err)
	}

	fmt.Println("New API Key:", id)
}
