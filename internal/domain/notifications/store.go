package notifications

import "pms/internal/platform/db"

type Store struct {
	DB db.Querier
}

func NewStore(conn db.Querier) *Store {
	return &Store{DB: conn}
}
