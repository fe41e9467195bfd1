package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/josmejia2401/jac-vision/internal/models"
)

// MongoTokenRepository implements TokenRepository on the tokens collection.
type MongoTokenRepository struct {
	coll *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *MongoTokenRepository {
	return &MongoTokenRepository{coll: db.Collection("tokens")}
}

func (r *MongoTokenRepository) FindByID(ctx context.Context, id int64) (*models.Token, error) {
	var token models.Token
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&token); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *MongoTokenRepository) FindByUserID(ctx context.Context, userID int64) ([]models.Token, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tokens := []models.Token{}
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *MongoTokenRepository) Create(ctx context.Context, token *models.Token) error {
	_, err := r.coll.InsertOne(ctx, token)
	return err
}

func (r *MongoTokenRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoTokenRepository) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
