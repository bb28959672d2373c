// Package repomanager wires the per-entity repositories to a concrete
// storage backend and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dsavelev/userpost/internal/dbx"
	"github.com/dsavelev/userpost/internal/server/repositories/posts"
	"github.com/dsavelev/userpost/internal/server/repositories/refreshtokens"
	"github.com/dsavelev/userpost/internal/server/repositories/users"
)

// RepositoryManager builds repositories bound to a DBTX, so services can
// hand the same repository code either the pooled *sql.DB or an open
// transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
