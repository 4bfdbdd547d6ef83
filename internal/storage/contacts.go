package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/documind-api/internal/models"
)

// CreateContact сохраняет сообщение формы обратной связи.
func (s *Storage) CreateContact(ctx context.Context, c *models.Contact) (primitive.ObjectID, error) {
	const op = "storage.CreateContact"

	res, err := s.contacts.InsertOne(ctx, c)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s: %w", op, err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("%s: unexpected inserted id %v", op, res.InsertedID)
	}
	c.ID = id
	return id, nil
}

// ListContacts возвращает последние сообщения. limit <= 0 — без ограничения.
func (s *Storage) ListContacts(ctx context.Context, limit int) ([]*models.Contact, error) {
	const op = "storage.ListContacts"
	return s.findContacts(ctx, op, bson.M{}, limit)
}

// ListContactsByDate возвращает сообщения в диапазоне [from, to], новые первыми.
func (s *Storage) ListContactsByDate(ctx context.Context, r models.DateRange) ([]*models.Contact, error) {
	const op = "storage.ListContactsByDate"
	filter := bson.M{"createdAt": bson.M{"$gte": r.From, "$lte": r.To}}
	return s.findContacts(ctx, op, filter, 0)
}

func (s *Storage) findContacts(ctx context.Context, op string, filter bson.M, limit int) ([]*models.Contact, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}
	cur, err := s.contacts.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	contacts := make([]*models.Contact, 0)
	if err = cur.All(ctx, &contacts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return contacts, nil
}

// CountContacts возвращает общее число сообщений.
func (s *Storage) CountContacts(ctx context.Context) (int64, error) {
	const op = "storage.CountContacts"
	n, err := s.contacts.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// ContactsByDate считает сообщения по дням (UTC) для последних days дней, в которых они были,
// в порядке возрастания даты.
func (s *Storage) ContactsByDate(ctx context.Context, days int) ([]models.DateCount, error) {
	const op = "storage.ContactsByDate"

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$createdAt"},
			}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
		{{Key: "$limit", Value: days}},
	}
	cur, err := s.contacts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows := make([]models.DateCount, 0, days)
	if err = cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
