package entities

// ApiKey is a row of the api_keys table
type ApiKey struct {
	ApiKey string `db:"id"`
	Status bool   `db:"status"`
}
