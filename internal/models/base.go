package models

import "github.com/google/uuid"

// ensureID проставляет UUID до вставки: не полагаемся на gen_random_uuid(),
// чтобы схема работала и в Postgres, и в SQLite.
// V7 растет со временем, поэтому id годится для разрешения равных created_at.
func ensureID(id *uuid.UUID) {
	if *id != uuid.Nil {
		return
	}
	v7, err := uuid.NewV7()
	if err != nil {
		v7 = uuid.New()
	}
	*id = v7
}
