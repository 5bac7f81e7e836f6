package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mycity/intake/pkg/models"
)

func (r *SQLiteRepo) CreateAdmin(ctx context.Context, a *models.Admin) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("admin is nil")
	}

	role := a.Role
	if role == "" {
		role = models.RoleAdmin
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO admins (email, password_hash, role, created) VALUES (?, ?, ?, ?)`, a.Email, a.PasswordHash, role, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, email, password_hash, role, created FROM admins WHERE id = ?`, id)
	return scanAdmin(row)
}

func (r *SQLiteRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, email, password_hash, role, created FROM admins WHERE email = ?`, email)
	return scanAdmin(row)
}

func (r *SQLiteRepo) CountAdmins(ctx context.Context) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM admins`)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func scanAdmin(row *sql.Row) (*models.Admin, error) {
	var a models.Admin
	var pw sql.NullString
	if err := row.Scan(&a.ID, &a.Email, &pw, &a.Role, &a.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	if pw.Valid {
		a.PasswordHash = pw.String
	}

	return &a, nil
}
