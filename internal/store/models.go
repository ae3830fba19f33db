package store

import "database/sql"

// City is one gazetteer row. Seq preserves the dataset order.
type City struct {
	Seq        int
	Name       string
	Lat        float64
	Lon        float64
	Population *int64 // nil when the dataset leaves it blank
}

func toNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func fromNullInt64(ns sql.NullInt64) *int64 {
	if !ns.Valid {
		return nil
	}
	v := ns.Int64
	return &v
}
