package performance

import "pms/internal/platform/db"

type Store struct {
	DB db.DB
}

func NewStore(conn db.DB) *Store {
	return &Store{DB: conn}
}
