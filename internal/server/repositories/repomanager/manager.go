package repomanager

import (
	"context"
	"database/sql"

	"github.com/Chris-Obeng/talkflo-app1/internal/dbx"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/folders"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/notes"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/recordings"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/refreshtokens"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/settings"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/subscriptions"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/users"
)

// RepositoryManager binds repositories to a DBTX so services can run the
// same code against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Notes(db dbx.DBTX) notes.Repository
	Folders(db dbx.DBTX) folders.Repository
	Recordings(db dbx.DBTX) recordings.Repository
	Settings(db dbx.DBTX) settings.Repository
	Subscriptions(db dbx.DBTX) subscriptions.Repository
}
