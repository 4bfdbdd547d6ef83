package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/documind-api/internal/models"
)

var withoutPassword = bson.M{"password": 0}

// CreateUser сохраняет нового пользователя и возвращает его ID.
// Уникальность email обеспечивается индексом users_email_unique.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	const op = "storage.CreateUser"

	user.Email = normalizeEmail(user.Email)
	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return primitive.NilObjectID, fmt.Errorf("%s: %w", op, err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("%s: unexpected inserted id %v", op, res.InsertedID)
	}
	user.ID = id
	return id, nil
}

// GetUserByID возвращает пользователя по его идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return s.findOneUser(ctx, op, bson.M{"_id": oid})
}

// GetUserByEmail возвращает пользователя по email без учёта регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	return s.findOneUser(ctx, op, bson.M{"email": normalizeEmail(email)})
}

func (s *Storage) findOneUser(ctx context.Context, op string, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// TouchLastLogin обновляет время последнего входа.
func (s *Storage) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	const op = "storage.TouchLastLogin"
	return s.updateUser(ctx, op, id, bson.M{"lastLogin": at})
}

// UpdateUser применяет частичное обновление. Пустые поля пропускаются.
func (s *Storage) UpdateUser(ctx context.Context, id string, upd models.UserUpdate, at time.Time) error {
	const op = "storage.UpdateUser"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	set := bson.M{"updatedAt": at}
	if upd.Name != "" {
		set["name"] = strings.TrimSpace(upd.Name)
	}
	if upd.Email != "" {
		set["email"] = normalizeEmail(upd.Email)
	}
	if upd.Role != "" {
		set["role"] = upd.Role
	}
	if upd.Subscription != nil {
		set["subscription"] = upd.Subscription
	}
	return s.updateUser(ctx, op, oid, set)
}

// UpdateSubscription заменяет поля подписки пользователя.
func (s *Storage) UpdateSubscription(ctx context.Context, id string, upd models.SubscriptionUpdate, at time.Time) error {
	const op = "storage.UpdateSubscription"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	features := upd.Features
	if features == nil {
		features = []string{}
	}
	return s.updateUser(ctx, op, oid, bson.M{
		"subscription.plan":     upd.Plan,
		"subscription.status":   upd.Status,
		"subscription.endDate":  upd.EndDate,
		"subscription.features": features,
		"updatedAt":             at,
	})
}

func (s *Storage) updateUser(ctx context.Context, op string, id primitive.ObjectID, set bson.M) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// DeleteUser безвозвратно удаляет пользователя.
func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.DeleteUser"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// ListUsers возвращает страницу пользователей без хэшей паролей и общее число совпадений.
// Параметры запроса должны быть нормализованы вызывающей стороной.
func (s *Storage) ListUsers(ctx context.Context, q models.UserListQuery) ([]*models.User, int64, error) {
	const op = "storage.ListUsers"

	filter := userSearchFilter(q.Search)
	direction := -1
	if q.SortOrder == "asc" {
		direction = 1
	}
	findOpts := options.Find().
		SetProjection(withoutPassword).
		SetSort(bson.D{{Key: q.SortBy, Value: direction}, {Key: "_id", Value: direction}}).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))

	cur, err := s.users.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	users := make([]*models.User, 0, q.Limit)
	if err = cur.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	total, err := s.users.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return users, total, nil
}

// CountUsers возвращает общее число пользователей.
func (s *Storage) CountUsers(ctx context.Context) (int64, error) {
	const op = "storage.CountUsers"
	n, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// UsersByPlan считает пользователей по тарифным планам.
func (s *Storage) UsersByPlan(ctx context.Context) (map[string]int64, error) {
	const op = "storage.UsersByPlan"

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$subscription.plan"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := s.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var rows []struct {
		Plan  *string `bson:"_id"`
		Count int64   `bson:"count"`
	}
	if err = cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		plan := "unknown"
		if row.Plan != nil {
			plan = *row.Plan
		}
		result[plan] += row.Count
	}
	return result, nil
}

func userSearchFilter(search string) bson.M {
	search = strings.TrimSpace(search)
	if search == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"email": pattern},
	}}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
