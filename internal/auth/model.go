package auth

import (
	"context"
	"database/sql"
	"fmt"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
)

// User is a stored account able to log in.
type User struct {
	ID           uint64
	Username     string
	PasswordHash string
	TenantID     string
}

// UserRepo reads users from the application database.
type UserRepo struct {
	DB          *sql.DB
	Dialect     ormdriver.Dialect
	TablePrefix string
}

func (r *UserRepo) table() string {
	prefix := r.TablePrefix
	if prefix == "" {
		prefix = "reftab_"
	}
	return prefix + "users"
}

// GetByUsername returns the user or nil when absent.
func (r *UserRepo) GetByUsername(ctx context.Context, name string) (*User, error) {
	if r == nil || r.DB == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	var q string
	switch r.Dialect.(type) {
	case ormdriver.PostgresDialect, *ormdriver.PostgresDialect:
		q = fmt.Sprintf(`SELECT id, username, password_hash, tenant_id FROM %s WHERE username=$1`, r.table())
	default:
		q = fmt.Sprintf(`SELECT id, username, password_hash, tenant_id FROM %s WHERE username=?`, r.table())
	}
	row := r.DB.QueryRowContext(ctx, q, name)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.TenantID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByID returns the user or nil when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*User, error) {
	if r == nil || r.DB == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	var q string
	switch r.Dialect.(type) {
	case ormdriver.PostgresDialect, *ormdriver.PostgresDialect:
		q = fmt.Sprintf(`SELECT id, username, password_hash, tenant_id FROM %s WHERE id=$1`, r.table())
	default:
		q = fmt.Sprintf(`SELECT id, username, password_hash, tenant_id FROM %s WHERE id=?`, r.table())
	}
	row := r.DB.QueryRowContext(ctx, q, id)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.TenantID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
