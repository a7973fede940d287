package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/assignment"
)

type assignmentRepository struct {
	coll *mongo.Collection
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *mongo.Database) assignment.Repository {
	return &assignmentRepository{coll: db.Collection(assignmentsCollection)}
}

// normalizeAssignment makes sure maps decoded from documents are never nil.
func normalizeAssignment(a *assignment.Assignment) {
	if a.Questions == nil {
		a.Questions = make(map[string]assignment.Question)
	}
	if a.Submissions == nil {
		a.Submissions = make(map[string]assignment.Submission)
	}
}

func (repo *assignmentRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	return codeExists(ctx, repo.coll, "assignmentCode", code)
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	normalizeAssignment(&a)
	if _, err := repo.coll.InsertOne(ctx, a); err != nil {
		return assignment.Assignment{}, storeError("inserting assignment", err)
	}
	return a, nil
}

func (repo *assignmentRepository) GetAssignmentByCode(ctx context.Context, code string) (assignment.Assignment, error) {
	var a assignment.Assignment
	if err := repo.coll.FindOne(ctx, bson.M{"assignmentCode": code}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, storeError("selecting assignment", err)
	}
	normalizeAssignment(&a)
	return a, nil
}

func (repo *assignmentRepository) QueryAssignments(
	ctx context.Context,
	filter assignment.QueryFilter,
	orderings ...core.DBOrdering,
) ([]assignment.Assignment, error) {
	assignments := make([]assignment.Assignment, 0)
	query, ok := courseworkQuery(filter.TeacherCode, filter.AssignedTo, filter.SubmittedBy)
	if !ok {
		return assignments, nil
	}

	cursor, err := repo.coll.Find(ctx, query, options.Find().SetSort(sortDoc(orderings)))
	if err != nil {
		return nil, storeError("selecting assignments", err)
	}
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, storeError("decoding assignments", err)
	}
	for i := range assignments {
		normalizeAssignment(&assignments[i])
	}
	return assignments, nil
}

func (repo *assignmentRepository) SaveSubmission(
	ctx context.Context,
	code, studentCode string,
	sub assignment.Submission,
	updatedAt time.Time,
) (assignment.Assignment, error) {
	if !safeKeyRegex.MatchString(studentCode) {
		return assignment.Assignment{}, core.NewPersistenceError("saving submission", errInvalidKey(studentCode))
	}
	update := bson.M{"$set": bson.M{
		"submissions." + studentCode: sub,
		"updatedAt":                  updatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a assignment.Assignment
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"assignmentCode": code}, update, opts).Decode(&a)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, storeError("saving submission", err)
	}
	normalizeAssignment(&a)
	return a, nil
}
