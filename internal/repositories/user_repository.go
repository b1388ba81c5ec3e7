package repositories

import (
	"context"

	"github.com/SmartEdu-Labs/network-service/internal/models"
)

// UserRepository interface for identity and profile-metadata operations.
// The identity platform owns the records; this service reads them and
// writes only the user-metadata bag mirroring the local profile.
type UserRepository interface {
	// Basic read operations
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	// List and search operations
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Search(ctx context.Context, query string, filters UserFilters) ([]*models.User, int64, error)

	// Profile metadata bag (the remote mirror of the local profile store)
	GetMetadata(ctx context.Context, id string) (map[string]any, error)
	UpdateMetadata(ctx context.Context, id string, fields map[string]any) error

	// Validation and checks
	ExistsByID(ctx context.Context, id string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}
