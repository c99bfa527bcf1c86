package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/projectmanager/internal/dbx"
	"github.com/dmitrijs2005/projectmanager/internal/server/repositories/projects"
	"github.com/dmitrijs2005/projectmanager/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/projectmanager/internal/server/repositories/steps"
	"github.com/dmitrijs2005/projectmanager/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/projectmanager/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX so that services can
// run several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Projects(db dbx.DBTX) projects.Repository
	Steps(db dbx.DBTX) steps.Repository
	Tasks(db dbx.DBTX) tasks.Repository
}
