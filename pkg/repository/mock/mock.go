package mock

import (
	"context"
	"sort"

	"github.com/mycity/intake/pkg/models"
)

// Test helpers and mocks
type Mocks struct {
	AdminRepo     *mockAdminRepo
	ComplaintRepo *mockComplaintRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		AdminRepo:     &mockAdminRepo{},
		ComplaintRepo: &mockComplaintRepo{},
	}
}

type mockAdminRepo struct {
	Stored    *models.Admin
	CreateErr error
}

func (m *mockAdminRepo) CreateAdmin(ctx context.Context, a *models.Admin) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.Stored = &models.Admin{ID: 1, Email: a.Email, PasswordHash: a.PasswordHash, Role: a.Role, Created: a.Created}
	return 1, nil
}

func (m *mockAdminRepo) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	if m.Stored != nil && m.Stored.ID == id {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *mockAdminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if m.Stored != nil && m.Stored.Email == email {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *mockAdminRepo) CountAdmins(ctx context.Context) (int64, error) {
	if m.Stored != nil {
		return 1, nil
	}
	return 0, nil
}

type mockComplaintRepo struct {
	Stored    []models.Complaint
	CreateErr error
	UpdateErr error
}

func (m *mockComplaintRepo) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Stored = append(m.Stored, *c)
	return nil
}

func (m *mockComplaintRepo) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			c := m.Stored[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockComplaintRepo) ListComplaints(ctx context.Context, limit int) ([]models.Complaint, error) {
	out := make([]models.Complaint, len(m.Stored))
	copy(out, m.Stored)
	sort.Slice(out, func(i, j int) bool { return out[i].Created > out[j].Created })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockComplaintRepo) ListResolvedComplaints(ctx context.Context, limit int) ([]models.Complaint, error) {
	var out []models.Complaint
	for _, c := range m.Stored {
		if c.Status == models.StatusResolved {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		var ui, uj int64
		if out[i].Updated != nil {
			ui = *out[i].Updated
		}
		if out[j].Updated != nil {
			uj = *out[j].Updated
		}
		return ui > uj
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockComplaintRepo) UpdateComplaintStatus(ctx context.Context, id string, status models.ComplaintStatus, updated int64) (*models.Complaint, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			m.Stored[i].Status = status
			u := updated
			m.Stored[i].Updated = &u
			c := m.Stored[i]
			return &c, nil
		}
	}
	return nil, nil
}
