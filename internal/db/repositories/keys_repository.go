package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"skyline/flightsync/internal/constants"
	"skyline/flightsync/internal/models/entities"
)

// KeysRepo looks up service API keys
type KeysRepo struct {
	db *sqlx.DB
}

func NewApiKeysRepo(db *sqlx.DB) *KeysRepo {
	return &KeysRepo{db}
}

func (r *KeysRepo) GetStatus(ctx context.Context, key string) (*entities.ApiKey, error) {
	var keyRes entities.ApiKey

	err := r.db.QueryRowxContext(ctx, constants.GetStatusByApiKey, key).StructScan(&keyRes)
	if err != nil {
		return nil, err
	}

	return &keyRes, nil
}
