package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mycity/intake/pkg/models"
)

const complaintColumns = `id, description, email, lat, lng, photo_url, status, created, updated`

func (r *SQLiteRepo) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	if c == nil {
		return fmt.Errorf("complaint is nil")
	}

	var email, photo sql.NullString
	if c.Email != "" {
		email = sql.NullString{String: c.Email, Valid: true}
	}
	if c.PhotoURL != "" {
		photo = sql.NullString{String: c.PhotoURL, Valid: true}
	}

	var lat, lng sql.NullFloat64
	if c.Lat != nil {
		lat = sql.NullFloat64{Float64: *c.Lat, Valid: true}
	}
	if c.Lng != nil {
		lng = sql.NullFloat64{Float64: *c.Lng, Valid: true}
	}

	_, err := r.conn.Exec(ctx,
		`INSERT INTO complaints (id, description, email, lat, lng, photo_url, status, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Description, email, lat, lng, photo, c.Status, c.Created)
	return err
}

func (r *SQLiteRepo) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = ?`, id)
	c, err := scanComplaint(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}
	return c, nil
}

func (r *SQLiteRepo) ListComplaints(ctx context.Context, limit int) ([]models.Complaint, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT `+complaintColumns+` FROM complaints ORDER BY created DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectComplaints(rows)
}

func (r *SQLiteRepo) ListResolvedComplaints(ctx context.Context, limit int) ([]models.Complaint, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE status = ? ORDER BY updated DESC LIMIT ?`, models.StatusResolved, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectComplaints(rows)
}

// UpdateComplaintStatus sets status and the updated timestamp in a single
// statement, then re-reads the row. Returns nil, nil when id does not resolve.
func (r *SQLiteRepo) UpdateComplaintStatus(ctx context.Context, id string, status models.ComplaintStatus, updated int64) (*models.Complaint, error) {
	res, err := r.conn.Exec(ctx, `UPDATE complaints SET status = ?, updated = ? WHERE id = ?`, status, updated, id)
	if err != nil {
		return nil, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	return r.GetComplaint(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner) (*models.Complaint, error) {
	var c models.Complaint
	var email, photo sql.NullString
	var lat, lng sql.NullFloat64
	var upd sql.NullInt64
	if err := row.Scan(&c.ID, &c.Description, &email, &lat, &lng, &photo, &c.Status, &c.Created, &upd); err != nil {
		return nil, err
	}

	if email.Valid {
		c.Email = email.String
	}
	if photo.Valid {
		c.PhotoURL = photo.String
	}
	if lat.Valid {
		v := lat.Float64
		c.Lat = &v
	}
	if lng.Valid {
		v := lng.Float64
		c.Lng = &v
	}
	if upd.Valid {
		v := upd.Int64
		c.Updated = &v
	}

	return &c, nil
}

func collectComplaints(rows *sql.Rows) ([]models.Complaint, error) {
	var out []models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, *c)
	}

	return out, rows.Err()
}
