package mongo

import (
	"context"
	"regexp"
	"time"

	"github.com/dom/taskflow/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/datatypes"
)

type taskDocument struct {
	ID          string     `bson:"_id"`
	UserID      string     `bson:"user_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Status      string     `bson:"status"`
	Priority    string     `bson:"priority"`
	DueDate     *time.Time `bson:"due_date"`
	Tags        []string   `bson:"tags"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

func newTaskDocument(t *domain.Task) taskDocument {
	tags := []string(t.Tags)
	if tags == nil {
		tags = []string{}
	}
	return taskDocument{
		ID:          t.ID.String(),
		UserID:      t.UserID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Tags:        tags,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d taskDocument) toDomain() (*domain.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	owner, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, err
	}
	return &domain.Task{
		ID:          id,
		UserID:      owner,
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.TaskStatus(d.Status),
		Priority:    domain.TaskPriority(d.Priority),
		DueDate:     d.DueDate,
		Tags:        append(datatypes.JSONSlice[string]{}, d.Tags...),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

type taskRepository struct {
	collection *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *taskRepository {
	return &taskRepository{collection: db.Collection(tasksCollection)}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}

	_, err := r.collection.InsertOne(ctx, newTaskDocument(task))
	return translateError(err, domain.ErrTaskNotFound)
}

func (r *taskRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	var doc taskDocument
	if err := r.collection.FindOne(ctx, ownedBy(ownerID, id)).Decode(&doc); err != nil {
		return nil, translateError(err, domain.ErrTaskNotFound)
	}
	return doc.toDomain()
}

func (r *taskRepository) Update(ctx context.Context, ownerID, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.Priority != nil {
		set["priority"] = string(*patch.Priority)
	}
	if patch.SetDueDate {
		set["due_date"] = patch.DueDate
	}
	if patch.Tags != nil {
		set["tags"] = append([]string{}, (*patch.Tags)...)
	}

	var doc taskDocument
	err := r.collection.FindOneAndUpdate(ctx,
		ownedBy(ownerID, id),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translateError(err, domain.ErrTaskNotFound)
	}
	return doc.toDomain()
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := r.collection.DeleteOne(ctx, ownedBy(ownerID, id))
	if err != nil {
		return translateError(err, domain.ErrTaskNotFound)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) List(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, int64, error) {
	filter := taskFilter(query)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translateError(err, domain.ErrTaskNotFound)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$addFields", Value: sortKeys(query.SortBy)}},
		{{Key: "$sort", Value: taskSort(query)}},
		{{Key: "$skip", Value: int64(query.Skip())}},
		{{Key: "$limit", Value: int64(query.Limit)}},
		{{Key: "$project", Value: bson.D{{Key: "sort_rank", Value: 0}, {Key: "sort_missing", Value: 0}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, translateError(err, domain.ErrTaskNotFound)
	}
	defer cursor.Close(ctx)

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, translateError(err, domain.ErrTaskNotFound)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		t, err := d.toDomain()
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	return tasks, total, nil
}

func (r *taskRepository) CountByStatus(ctx context.Context, ownerID uuid.UUID) (map[string]int64, error) {
	return r.countBy(ctx, ownerID, "$status")
}

func (r *taskRepository) CountByPriority(ctx context.Context, ownerID uuid.UUID) (map[string]int64, error) {
	return r.countBy(ctx, ownerID, "$priority")
}

func (r *taskRepository) countBy(ctx context.Context, ownerID uuid.UUID, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": ownerID.String()}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translateError(err, domain.ErrTaskNotFound)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, translateError(err, domain.ErrTaskNotFound)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

func ownedBy(ownerID, id uuid.UUID) bson.M {
	return bson.M{"_id": id.String(), "user_id": ownerID.String()}
}

func taskFilter(query domain.TaskQuery) bson.M {
	filter := bson.M{"user_id": query.OwnerID.String()}
	if query.Status != "" {
		filter["status"] = string(query.Status)
	}
	if query.Priority != "" {
		filter["priority"] = string(query.Priority)
	}
	if query.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}
	return filter
}

// sortKeys adds the computed fields the sort stage needs. Enum columns are
// ranked by declaration order and missing due dates are flagged so they
// always sort last.
func sortKeys(field domain.SortField) bson.D {
	switch field {
	case domain.SortPriority:
		return bson.D{{Key: "sort_rank", Value: rankOf("$priority", domain.PriorityNames())}}
	case domain.SortStatus:
		return bson.D{{Key: "sort_rank", Value: rankOf("$status", domain.StatusNames())}}
	case domain.SortDueDate:
		return bson.D{{Key: "sort_missing", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$due_date", false}}}, 0, 1,
		}}}}}
	}
	return bson.D{{Key: "sort_rank", Value: bson.D{{Key: "$literal", Value: 0}}}}
}

func rankOf(field string, values []string) bson.D {
	return bson.D{{Key: "$indexOfArray", Value: bson.A{values, field}}}
}

func taskSort(query domain.TaskQuery) bson.D {
	dir := -1
	if query.SortAsc {
		dir = 1
	}

	var keys bson.D
	switch query.SortBy {
	case domain.SortUpdatedAt:
		keys = bson.D{{Key: "updated_at", Value: dir}}
	case domain.SortTitle:
		keys = bson.D{{Key: "title", Value: dir}}
	case domain.SortPriority, domain.SortStatus:
		keys = bson.D{{Key: "sort_rank", Value: dir}}
	case domain.SortDueDate:
		keys = bson.D{{Key: "sort_missing", Value: 1}, {Key: "due_date", Value: dir}}
	default:
		keys = bson.D{{Key: "created_at", Value: dir}}
	}
	return append(keys, bson.E{Key: "_id", Value: 1})
}
