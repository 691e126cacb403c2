package mongo

import (
	"context"
	"time"

	"github.com/dom/taskflow/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDocument struct {
	ID           string     `bson:"_id"`
	Name         string     `bson:"name"`
	Email        string     `bson:"email"`
	PasswordHash string     `bson:"password_hash"`
	Role         string     `bson:"role"`
	IsActive     bool       `bson:"is_active"`
	LastLogin    *time.Time `bson:"last_login"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

func newUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        domain.NormalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		IsActive:     u.IsActive,
		LastLogin:    u.LastLogin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		IsActive:     d.IsActive,
		LastLogin:    d.LastLogin,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

// withoutPassword is the projection for every read except the login lookup.
var withoutPassword = bson.D{{Key: "password_hash", Value: 0}}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *userRepository {
	return &userRepository{collection: db.Collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	doc := newUserDocument(user)
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return translateError(err, domain.ErrUserNotFound)
	}

	user.Email = doc.Email
	user.PasswordHash = ""
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()}, options.FindOne().SetProjection(withoutPassword))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)}, options.FindOne().SetProjection(withoutPassword))
}

func (r *userRepository) GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = domain.NormalizeEmail(*update.Email)
	}
	if update.PasswordHash != nil {
		set["password_hash"] = *update.PasswordHash
	}
	return r.update(ctx, id, set)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	res, err := r.collection.UpdateByID(ctx, id.String(), bson.M{"$set": bson.M{"last_login": time.Now().UTC()}})
	if err != nil {
		return translateError(err, domain.ErrUserNotFound)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.User, error) {
	return r.update(ctx, id, bson.M{"is_active": active})
}

func (r *userRepository) SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	return r.update(ctx, id, bson.M{"role": string(role)})
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, translateError(err, domain.ErrUserNotFound)
	}

	opts := options.Find().
		SetProjection(withoutPassword).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, translateError(err, domain.ErrUserNotFound)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, translateError(err, domain.ErrUserNotFound)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.toDomain()
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return nil, translateError(err, domain.ErrUserNotFound)
	}
	return doc.toDomain()
}

func (r *userRepository) update(ctx context.Context, id uuid.UUID, set bson.M) (*domain.User, error) {
	set["updated_at"] = time.Now().UTC()

	var doc userDocument
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(withoutPassword),
	).Decode(&doc)
	if err != nil {
		return nil, translateError(err, domain.ErrUserNotFound)
	}
	return doc.toDomain()
}
