package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quiz-registration-service/internal/domain/account"
	"github.com/quiz-registration-service/internal/domain/enrollment"
)

const EnrollmentCollectionName = "enrollments"

// EnrollmentRepository implements enrollment.Repository for MongoDB
type EnrollmentRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

func NewEnrollmentRepository(logger *slog.Logger, db *mongo.Database) *EnrollmentRepository {
	return &EnrollmentRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the unique email index.
func (r *EnrollmentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(EnrollmentCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys:    bson.D{{Key: "payment_id", Value: 1}},
			Options: options.Index().SetName("idx_payment_id").SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create enrollment indexes: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *enrollment.Enrollment) error {
	e.Email = account.NormalizeEmail(e.Email)
	if err := e.Validate(); err != nil {
		return err
	}

	_, err := r.db.Collection(EnrollmentCollectionName).InsertOne(ctx, e)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return enrollment.ErrDuplicateEnrollment{Email: e.Email}
		}
		r.logger.Error("Failed to create enrollment",
			"enrollment_id", e.ID.String(),
			"error", err)
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*enrollment.Enrollment, error) {
	var e enrollment.Enrollment
	err := r.db.Collection(EnrollmentCollectionName).FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, enrollment.ErrEnrollmentNotFound{EnrollmentID: id}
		}
		r.logger.Error("Failed to get enrollment", "enrollment_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return &e, nil
}

// GetByEmail returns nil, nil when no enrollment uses the email.
func (r *EnrollmentRepository) GetByEmail(ctx context.Context, email string) (*enrollment.Enrollment, error) {
	var e enrollment.Enrollment
	err := r.db.Collection(EnrollmentCollectionName).
		FindOne(ctx, bson.M{"email": account.NormalizeEmail(email)}).
		Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get enrollment by email", "error", err)
		return nil, fmt.Errorf("failed to get enrollment by email: %w", err)
	}
	return &e, nil
}

func (r *EnrollmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Collection(EnrollmentCollectionName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete enrollment", "enrollment_id", id.String(), "error", err)
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	if result.DeletedCount == 0 {
		return enrollment.ErrEnrollmentNotFound{EnrollmentID: id}
	}
	return nil
}
