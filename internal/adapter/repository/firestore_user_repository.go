package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/genproto/googleapis/type/latlng"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"userhub/internal/domain/entity"
	"userhub/internal/domain/repository"
)

const (
	usersCollection      = "users"
	categoriesCollection = "categories"
)

type categoryWeightRecord struct {
	Category *firestore.DocumentRef `firestore:"category"`
	Weight   float64                `firestore:"weight"`
}

// userRecord is the Firestore shape of entity.User. Field names used in
// queries must match repository.FieldEmail and repository.FieldPhoneNumber.
type userRecord struct {
	FirstName             string                 `firestore:"firstName"`
	LastName              string                 `firestore:"lastName"`
	Email                 *string                `firestore:"email"`
	IsEmailVerified       bool                   `firestore:"isEmailVerified"`
	PhoneNumber           *string                `firestore:"phoneNumber"`
	IsPhoneNumberVerified bool                   `firestore:"isPhoneNumberVerified"`
	Password              *string                `firestore:"password"`
	FacebookID            *string                `firestore:"facebookId"`
	SignupMethod          string                 `firestore:"signupMethod"`
	CategoryWeights       []categoryWeightRecord `firestore:"categoryWeights"`
	LastKnownLocation     *latlng.LatLng         `firestore:"lastKnownLocation"`
	Credit                float64                `firestore:"credit"`
	Debit                 float64                `firestore:"debit"`
	DateCreated           time.Time              `firestore:"dateCreated"`
	DateLastModified      time.Time              `firestore:"dateLastModified"`
}

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	ref := r.client.Collection(usersCollection).NewDoc()
	if _, err := ref.Create(ctx, r.toRecord(user)); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = ref.ID
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	return toUser(doc)
}

func (r *firestoreUserRepository) FindOneByField(ctx context.Context, field, value string) (*entity.User, error) {
	iter := r.client.Collection(usersCollection).Where(field, "==", value).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query users by %s: %w", field, err)
	}

	return toUser(doc)
}

// Update writes the mutable profile fields. It fails with
// repository.ErrNotFound instead of recreating a deleted user.
func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Update(ctx, []firestore.Update{
		{Path: "firstName", Value: user.FirstName},
		{Path: "lastName", Value: user.LastName},
		{Path: "email", Value: user.Email},
		{Path: "isEmailVerified", Value: user.IsEmailVerified},
		{Path: "phoneNumber", Value: user.PhoneNumber},
		{Path: "isPhoneNumberVerified", Value: user.IsPhoneNumberVerified},
		{Path: "dateLastModified", Value: user.DateLastModified},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}

	return nil
}

func (r *firestoreUserRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := r.client.Collection(usersCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	return nil
}

func (r *firestoreUserRepository) toRecord(user *entity.User) *userRecord {
	weights := make([]categoryWeightRecord, 0, len(user.CategoryWeights))
	for _, w := range user.CategoryWeights {
		weights = append(weights, categoryWeightRecord{
			Category: r.client.Collection(categoriesCollection).Doc(w.CategoryID),
			Weight:   w.Weight,
		})
	}

	return &userRecord{
		FirstName:             user.FirstName,
		LastName:              user.LastName,
		Email:                 user.Email,
		IsEmailVerified:       user.IsEmailVerified,
		PhoneNumber:           user.PhoneNumber,
		IsPhoneNumberVerified: user.IsPhoneNumberVerified,
		Password:              user.Password,
		FacebookID:            user.FacebookID,
		SignupMethod:          user.SignupMethod,
		CategoryWeights:       weights,
		LastKnownLocation: &latlng.LatLng{
			Latitude:  user.LastKnownLocation.Latitude,
			Longitude: user.LastKnownLocation.Longitude,
		},
		Credit:           user.Credit,
		Debit:            user.Debit,
		DateCreated:      user.DateCreated,
		DateLastModified: user.DateLastModified,
	}
}

func toUser(doc *firestore.DocumentSnapshot) (*entity.User, error) {
	var rec userRecord
	if err := doc.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to parse user %s: %w", doc.Ref.ID, err)
	}

	weights := make([]entity.CategoryWeight, 0, len(rec.CategoryWeights))
	for _, w := range rec.CategoryWeights {
		if w.Category == nil {
			continue
		}
		weights = append(weights, entity.CategoryWeight{CategoryID: w.Category.ID, Weight: w.Weight})
	}

	user := &entity.User{
		ID:                    doc.Ref.ID,
		FirstName:             rec.FirstName,
		LastName:              rec.LastName,
		Email:                 rec.Email,
		IsEmailVerified:       rec.IsEmailVerified,
		PhoneNumber:           rec.PhoneNumber,
		IsPhoneNumberVerified: rec.IsPhoneNumberVerified,
		Password:              rec.Password,
		FacebookID:            rec.FacebookID,
		SignupMethod:          rec.SignupMethod,
		CategoryWeights:       weights,
		Credit:                rec.Credit,
		Debit:                 rec.Debit,
		DateCreated:           rec.DateCreated,
		DateLastModified:      rec.DateLastModified,
	}
	if rec.LastKnownLocation != nil {
		user.LastKnownLocation = entity.GeoPoint{
			Latitude:  rec.LastKnownLocation.Latitude,
			Longitude: rec.LastKnownLocation.Longitude,
		}
	}

	return user, nil
}

type firestoreCategoryRepository struct {
	client *firestore.Client
}

func NewFirestoreCategoryRepository(client *firestore.Client) repository.CategoryRepository {
	return &firestoreCategoryRepository{
		client: client,
	}
}

func (r *firestoreCategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	iter := r.client.Collection(categoriesCollection).Documents(ctx)
	defer iter.Stop()

	var categories []*entity.Category
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}

		var category entity.Category
		if err := doc.DataTo(&category); err != nil {
			return nil, fmt.Errorf("failed to parse category %s: %w", doc.Ref.ID, err)
		}
		category.ID = doc.Ref.ID
		categories = append(categories, &category)
	}

	return categories, nil
}
