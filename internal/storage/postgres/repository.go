package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherhub/server/internal/domain/events"
	"github.com/gatherhub/server/internal/domain/registrations"
	"github.com/gatherhub/server/internal/domain/users"
)

// Repository bundles the PostgreSQL-backed domain repositories. queryTimeout
// bounds every store operation; a non-positive value disables the bound.
type Repository struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

func NewRepository(pool *pgxpool.Pool, queryTimeout time.Duration) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool, queryTimeout: queryTimeout}, nil
}

func (r *Repository) Users() users.Repository {
	return &UserRepository{pool: r.pool, timeout: r.queryTimeout}
}

func (r *Repository) Events() events.Repository {
	return &EventRepository{pool: r.pool, timeout: r.queryTimeout}
}

func (r *Repository) Registrations() registrations.Repository {
	return &RegistrationRepository{pool: r.pool, timeout: r.queryTimeout}
}
