package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// nullableID convierte "" en NULL para parámetros uuid opcionales.
func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// nullableText convierte "" en NULL para columnas de texto opcionales.
func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// isUUID: un id que no es uuid no existe en la base y se responde como no encontrado.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
