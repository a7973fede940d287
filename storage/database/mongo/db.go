package mongodb

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pragya-git-bug/aibackend/core"
)

// Collections
const (
	usersCollection       = "users"
	assignmentsCollection = "assignments"
	quizzesCollection     = "quizes"
)

// student codes are used as document keys (submissions.<code>)
var safeKeyRegex = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Open connects to the database and waits for it to be ready.
// The returned client is meant to be kept for the process lifetime.
func Open(ctx context.Context, conf *core.Config) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(conf.Database.URI).
		SetConnectTimeout(conf.Database.Timeout).
		SetServerSelectionTimeout(conf.Database.Timeout).
		SetAppName(conf.AppName)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = ping(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, client.Database(conf.Database.Name), nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, client *mongo.Client) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = client.Ping(ctx, nil); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping cancelled")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

// StatusCheck reports whether the database answers.
func StatusCheck(ctx context.Context, client *mongo.Client) error {
	return client.Ping(ctx, nil)
}

// EnsureIndexes creates the unique indexes entity codes and emails rely on, plus the lookup ones.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "userCode", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		assignmentsCollection: {
			{Keys: bson.D{{Key: "assignmentCode", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "teacherCode", Value: 1}}},
			{Keys: bson.D{{Key: "assignedTo", Value: 1}}},
		},
		quizzesCollection: {
			{Keys: bson.D{{Key: "quizeCode", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "teacherCode", Value: 1}}},
			{Keys: bson.D{{Key: "assignedTo", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

// storeError maps driver errors to core errors.
func storeError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrap(core.ErrDuplicateKey, op)
	}
	return core.NewPersistenceError(op, err)
}

// sortDoc translates orderings to a sort document, falling back on createdAt (ascending).
// A field is sorted on once, by its first ordering.
func sortDoc(orderings []core.DBOrdering) bson.D {
	sort := make(bson.D, 0, len(orderings)+2)
	seen := make(map[string]bool, len(orderings)+2)
	add := func(field string, dir int) {
		if !seen[field] {
			seen[field] = true
			sort = append(sort, bson.E{Key: field, Value: dir})
		}
	}
	for _, ord := range orderings {
		dir := -1
		if ord.Ascending {
			dir = 1
		}
		add(ord.Field, dir)
	}
	add("createdAt", 1)
	add("_id", 1)
	return sort
}

func errInvalidKey(key string) error {
	return errors.Errorf("invalid document key %q", key)
}

// courseworkQuery builds the filter shared by assignments and quizzes.
// ok is false when nothing can match (a student code that cannot be a key).
func courseworkQuery(teacherCode, assignedTo, submittedBy string) (query bson.M, ok bool) {
	query = bson.M{}
	if teacherCode != "" {
		query["teacherCode"] = teacherCode
	}
	if assignedTo != "" {
		query["assignedTo"] = assignedTo
	}
	if submittedBy != "" {
		if !safeKeyRegex.MatchString(submittedBy) {
			return nil, false
		}
		query["submissions."+submittedBy] = bson.M{"$exists": true}
	}
	return query, true
}

func codeExists(ctx context.Context, coll *mongo.Collection, field, code string) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{field: code}, options.Count().SetLimit(1))
	if err != nil {
		return false, core.NewPersistenceError("checking "+field, err)
	}
	return n > 0, nil
}
