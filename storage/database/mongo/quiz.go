package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/quiz"
)

type quizRepository struct {
	coll *mongo.Collection
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *mongo.Database) quiz.Repository {
	return &quizRepository{coll: db.Collection(quizzesCollection)}
}

func normalizeQuiz(qz *quiz.Quiz) {
	if qz.Questions == nil {
		qz.Questions = make(map[string]quiz.Question)
	}
	if qz.Submissions == nil {
		qz.Submissions = make(map[string]quiz.Submission)
	}
}

func (repo *quizRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	return codeExists(ctx, repo.coll, "quizeCode", code)
}

func (repo *quizRepository) CreateQuiz(ctx context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	normalizeQuiz(&qz)
	if _, err := repo.coll.InsertOne(ctx, qz); err != nil {
		return quiz.Quiz{}, storeError("inserting quiz", err)
	}
	return qz, nil
}

func (repo *quizRepository) GetQuizByCode(ctx context.Context, code string) (quiz.Quiz, error) {
	var qz quiz.Quiz
	if err := repo.coll.FindOne(ctx, bson.M{"quizeCode": code}).Decode(&qz); err != nil {
		if err == mongo.ErrNoDocuments {
			return quiz.Quiz{}, quiz.ErrNotFound
		}
		return quiz.Quiz{}, storeError("selecting quiz", err)
	}
	normalizeQuiz(&qz)
	return qz, nil
}

func (repo *quizRepository) QueryQuizzes(ctx context.Context, filter quiz.QueryFilter, orderings ...core.DBOrdering) ([]quiz.Quiz, error) {
	quizzes := make([]quiz.Quiz, 0)
	query, ok := courseworkQuery(filter.TeacherCode, filter.AssignedTo, filter.SubmittedBy)
	if !ok {
		return quizzes, nil
	}

	cursor, err := repo.coll.Find(ctx, query, options.Find().SetSort(sortDoc(orderings)))
	if err != nil {
		return nil, storeError("selecting quizzes", err)
	}
	if err = cursor.All(ctx, &quizzes); err != nil {
		return nil, storeError("decoding quizzes", err)
	}
	for i := range quizzes {
		normalizeQuiz(&quizzes[i])
	}
	return quizzes, nil
}

func (repo *quizRepository) SaveSubmission(
	ctx context.Context,
	code, studentCode string,
	sub quiz.Submission,
	updatedAt time.Time,
) (quiz.Quiz, error) {
	if !safeKeyRegex.MatchString(studentCode) {
		return quiz.Quiz{}, core.NewPersistenceError("saving submission", errInvalidKey(studentCode))
	}
	update := bson.M{"$set": bson.M{
		"submissions." + studentCode: sub,
		"updatedAt":                  updatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var qz quiz.Quiz
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"quizeCode": code}, update, opts).Decode(&qz)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return quiz.Quiz{}, quiz.ErrNotFound
		}
		return quiz.Quiz{}, storeError("saving submission", err)
	}
	normalizeQuiz(&qz)
	return qz, nil
}
