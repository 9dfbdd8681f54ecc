package db

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// InitPostgres opens the sqlx pool used by the API key lookups. Postgres may still be
// starting when the service boots, so the connect is retried briefly.
func InitPostgres(dsn string) (*sqlx.DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)

	for i := 0; i < 10; i++ {
		conn, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return conn, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, err
}
