package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mycity/intake/pkg/models"
	"github.com/mycity/intake/pkg/repository"
)

// EnsureInitialAdmin creates the first administrator when the credential
// store is empty. The unique index on admins.email is the real guard: when a
// concurrent cold start wins the insert, the duplicate-key failure here is a
// benign no-op.
func EnsureInitialAdmin(ctx context.Context, admins repository.AdminRepo, email, password string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return fmt.Errorf("admin bootstrap missing email or password")
	}

	count, err := admins.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bootstrap hash password: %w", err)
	}

	a := &models.Admin{
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if _, err := admins.CreateAdmin(ctx, a); err != nil {
		// a concurrent start may have inserted between the count and here
		if after, cErr := admins.CountAdmins(ctx); cErr == nil && after > 0 {
			logger.Warn("initial admin already created elsewhere", slog.String("email", email))
			return nil
		}
		return fmt.Errorf("bootstrap create admin: %w", err)
	}

	logger.Info("created initial admin", slog.String("email", email))
	return nil
}
