package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-gear-rental/internal/config"
)

// PostgreSQL error codes handled by the repositories.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

// NewConnection opens a PostgreSQL connection pool.
func NewConnection(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	return db, nil
}

// Ping checks the connection.
func Ping(ctx context.Context, db *sqlx.DB) error {
	return db.PingContext(ctx)
}

func pqCode(err error) (string, string) {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return string(pgErr.Code), pgErr.Constraint
	}
	return "", ""
}

func isUniqueViolation(err error) bool {
	code, _ := pqCode(err)
	return code == codeUniqueViolation
}

// isInvalidText reports malformed input such as a non-UUID id.
func isInvalidText(err error) bool {
	code, _ := pqCode(err)
	return code == codeInvalidText
}
