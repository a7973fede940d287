package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/user"
)

type userRepository struct {
	coll *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *mongo.Database) user.Repository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (repo *userRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	return codeExists(ctx, repo.coll, "userCode", code)
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if _, err := repo.coll.InsertOne(ctx, usr); err != nil {
		return user.User{}, storeError("inserting user", err)
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, orderings ...core.DBOrdering) ([]user.User, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.ClassName != "" {
		query["className"] = filter.ClassName
	}

	cursor, err := repo.coll.Find(ctx, query, options.Find().SetSort(sortDoc(orderings)))
	if err != nil {
		return nil, storeError("selecting users", err)
	}
	users := make([]user.User, 0)
	if err = cursor.All(ctx, &users); err != nil {
		return nil, storeError("decoding users", err)
	}
	return users, nil
}

func (repo *userRepository) getUser(ctx context.Context, filter bson.M) (user.User, error) {
	var usr user.User
	if err := repo.coll.FindOne(ctx, filter).Decode(&usr); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, storeError("selecting user", err)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByCode(ctx context.Context, code string) (user.User, error) {
	return repo.getUser(ctx, bson.M{"userCode": code})
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, bson.M{"email": email})
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	update := bson.M{"$set": bson.M{
		"fullName":     usr.FullName,
		"email":        usr.Email,
		"mobileNumber": usr.MobileNumber,
		"password":     usr.PasswordHash,
		"role":         usr.Role,
		"className":    usr.ClassName,
		"updatedAt":    usr.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated user.User
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"userCode": usr.UserCode}, update, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, storeError("updating user", err)
	}
	return updated, nil
}
