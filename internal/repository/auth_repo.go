package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"timecircuits/internal/models"
)

// ErrOperatorExists is returned by Create for a taken username.
var ErrOperatorExists = errors.New("operator already exists")

// OperatorRepository stores the accounts allowed to drive the panel.
type OperatorRepository struct {
	db *sql.DB
}

func NewOperatorRepository(db *sql.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

var _ Authorization = (*OperatorRepository)(nil)

const (
	insertOperatorSQL           = `INSERT INTO operators (username, password_hash) VALUES (?, ?)`
	selectOperatorByUsernameSQL = `SELECT id, username, password_hash FROM operators WHERE username = ?`
)

func (r *OperatorRepository) Create(username, passwordHash string) (int, error) {
	res, err := r.db.Exec(insertOperatorSQL, username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %q", ErrOperatorExists, username)
		}
		return 0, fmt.Errorf("insert operator %q: %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("operator %q id: %w", username, err)
	}
	return int(id), nil
}

// GetByUsername returns ErrNotFound for an unknown username.
func (r *OperatorRepository) GetByUsername(username string) (*models.Operator, error) {
	var op models.Operator
	err := r.db.QueryRow(selectOperatorByUsernameSQL, username).Scan(&op.ID, &op.Username, &op.PasswordHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("select operator %q: %w", username, err)
	}
	return &op, nil
}

// isUniqueViolation matches the sqlite constraint message; the driver error
// type is not exported through database/sql.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
