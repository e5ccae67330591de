// Package rest implements moment, comment and like persistence against the
// remote PostgREST tables. It is the only package that knows table names and
// column-level predicates; services above it deal in domain types.
package rest

import (
	"github.com/xkailive-dev/xkailive/internal/supabase"
	"github.com/xkailive-dev/xkailive/shared/config"
)

type Storage struct {
	client *supabase.Client

	momentsTable  string
	commentsTable string
	likesTable    string
}

func New(client *supabase.Client, cfg config.Supabase) *Storage {
	return &Storage{
		client:        client,
		momentsTable:  cfg.MomentsTable,
		commentsTable: cfg.CommentsTable,
		likesTable:    cfg.LikesTable,
	}
}
