// Package shared sets up what the api and admin binaries both need:
// the storage engine, the outer services and the domain services.
package shared

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/assignment"
	"github.com/pragya-git-bug/aibackend/core/quiz"
	"github.com/pragya-git-bug/aibackend/core/user"
	inmemdb "github.com/pragya-git-bug/aibackend/storage/database/inmem"
	mongodb "github.com/pragya-git-bug/aibackend/storage/database/mongo"
	pgdb "github.com/pragya-git-bug/aibackend/storage/database/postgres"
)

// Stores holds the repositories of the configured storage engine.
type Stores struct {
	Engine      string
	Users       user.Repository
	Assignments assignment.Repository
	Quizzes     quiz.Repository
	SQL         *sqlx.DB // postgres only

	closeFn func() error
}

// OpenStores connects to the configured database and returns its repositories.
// With the postgres engine, the database is created if needed and, when migrate is set, migrated up.
func OpenStores(ctx context.Context, conf *core.Config, migrate bool) (*Stores, error) {
	if conf.Database.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, conf.Database.Timeout)
		defer cancel()
	}

	switch conf.Database.Engine {
	case core.EngineMongo:
		client, db, err := mongodb.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err = mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &Stores{
			Engine:      core.EngineMongo,
			Users:       mongodb.NewUserRepository(db),
			Assignments: mongodb.NewAssignmentRepository(db),
			Quizzes:     mongodb.NewQuizRepository(db),
			closeFn:     func() error { return client.Disconnect(context.Background()) },
		}, nil

	case core.EnginePostgres:
		if err := pgdb.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}
		db, err := pgdb.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err = pgdb.Migrate(ctx, db, "up"); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Stores{
			Engine:      core.EnginePostgres,
			Users:       pgdb.NewUserRepository(db),
			Assignments: pgdb.NewAssignmentRepository(db),
			Quizzes:     pgdb.NewQuizRepository(db),
			SQL:         db,
			closeFn:     db.Close,
		}, nil

	case core.EngineMemory:
		db := inmemdb.Open()
		return &Stores{
			Engine:      core.EngineMemory,
			Users:       inmemdb.NewUserRepository(db),
			Assignments: inmemdb.NewAssignmentRepository(db),
			Quizzes:     inmemdb.NewQuizRepository(db),
			closeFn:     func() error { return nil },
		}, nil
	}
	return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}

func (s *Stores) Close() error {
	return s.closeFn()
}
