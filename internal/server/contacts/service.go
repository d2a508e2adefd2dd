// Package contacts implements the contact CRUD service: store access glue
// around the repositories plus avatar storage via presigned S3 URLs.
package contacts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vkraskov/contactsync/internal/common"
	sc "github.com/vkraskov/contactsync/internal/server/config"
	"github.com/vkraskov/contactsync/internal/server/models"
	contactrepo "github.com/vkraskov/contactsync/internal/server/repositories/contacts"
	"github.com/vkraskov/contactsync/internal/server/repositories/repomanager"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Service provides per-user contact CRUD on top of the configured store.
type Service struct {
	db      *sql.DB
	manager repomanager.RepositoryManager
	config  *sc.Config
}

func NewService(db *sql.DB, manager repomanager.RepositoryManager, config *sc.Config) *Service {
	return &Service{db: db, manager: manager, config: config}
}

func (s *Service) repo() contactrepo.Repository {
	return s.manager.Contacts(s.db)
}

// List returns the user's contacts matching the filter, ordered by name.
func (s *Service) List(ctx context.Context, userID string, f contactrepo.Filter) ([]*models.Contact, error) {
	result, err := s.repo().List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("error listing contacts: %w", err)
	}
	return result, nil
}

// Get returns one contact scoped to the user.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Contact, error) {
	return s.repo().GetByID(ctx, userID, id)
}

// Create materializes a new contact from the payload. firstName and
// lastName are required; the category label is derived at this write
// boundary.
func (s *Service) Create(ctx context.Context, userID string, payload *models.ContactPatch) (*models.Contact, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: contact payload is required", common.ErrInvalidArgument)
	}

	now := time.Now()
	c := &models.Contact{
		ID:           uuid.NewString(),
		UserID:       userID,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastSyncedAt: now,
	}
	payload.Apply(c)
	c.Category = models.DeriveCategory(c.Categories, c.Category)

	if c.FirstName == "" || c.LastName == "" {
		return nil, fmt.Errorf("%w: firstName and lastName are required", common.ErrInvalidArgument)
	}

	if err := s.repo().Create(ctx, c); err != nil {
		return nil, fmt.Errorf("error creating contact: %w", err)
	}
	return c, nil
}

// Update applies a partial update to the contact scoped to the user.
func (s *Service) Update(ctx context.Context, userID, id string, patch *models.ContactPatch) (*models.Contact, error) {
	if patch == nil {
		return nil, fmt.Errorf("%w: contact payload is required", common.ErrInvalidArgument)
	}

	c, err := s.repo().GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	patch.Apply(c)
	c.Category = models.DeriveCategory(c.Categories, c.Category)
	c.LastSyncedAt = now
	c.UpdatedAt = now

	if err := s.repo().Update(ctx, c); err != nil {
		return nil, fmt.Errorf("error updating contact: %w", err)
	}
	return c, nil
}

// Delete removes the contact scoped to the user.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo().Delete(ctx, userID, id)
}

// AvatarStorageKey returns a fresh object key for an avatar upload.
func AvatarStorageKey(userID string) string {
	d := time.Now()
	return fmt.Sprintf("avatars/%s/%d/%d/%d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *Service) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// AvatarUploadURL issues a presigned PUT for a new avatar object and stores
// the object key on the contact.
func (s *Service) AvatarUploadURL(ctx context.Context, userID, contactID string) (string, string, error) {
	c, err := s.repo().GetByID(ctx, userID, contactID)
	if err != nil {
		return "", "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := AvatarStorageKey(userID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}

	now := time.Now()
	c.AvatarKey = key
	c.UpdatedAt = now
	c.LastSyncedAt = now
	if err := s.repo().Update(ctx, c); err != nil {
		return "", "", fmt.Errorf("error updating contact: %w", err)
	}

	return key, req.URL, nil
}

// AvatarDownloadURL issues a presigned GET for the contact's stored avatar.
func (s *Service) AvatarDownloadURL(ctx context.Context, userID, contactID string) (string, error) {
	c, err := s.repo().GetByID(ctx, userID, contactID)
	if err != nil {
		return "", err
	}
	if c.AvatarKey == "" {
		return "", fmt.Errorf("%w: contact has no avatar", common.ErrNotFound)
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &c.AvatarKey,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
