package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"practice-tracker/internal/domain"
	"practice-tracker/internal/repository"
	"practice-tracker/internal/storage"
)

// AdminService holds the maintenance operations: wiping the store during
// development and shipping database backups to object storage. The storage
// service is optional; backup operations fail cleanly when it is absent.
type AdminService interface {
	ResetDatabase(ctx context.Context) error
	BackupDatabase(ctx context.Context) (string, error)
	ListBackups(ctx context.Context) ([]storage.ObjectInfo, error)
	BackupDownloadURL(ctx context.Context, key string) (string, error)
	PruneBackups(ctx context.Context, prefix string) error
}

type adminService struct {
	users     repository.UserRepository
	problems  repository.ProblemRepository
	store     storage.Service
	bucket    string
	keyPrefix string
	dbPath    string
}

func NewAdminService(users repository.UserRepository, problems repository.ProblemRepository, store storage.Service, bucket, keyPrefix, dbPath string) AdminService {
	return &adminService{
		users:     users,
		problems:  problems,
		store:     store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
		dbPath:    dbPath,
	}
}

// ResetDatabase drops and recreates both tables. Problems go first so the
// implicit delete on users never hits live child rows.
func (s *adminService) ResetDatabase(ctx context.Context) error {
	if err := s.problems.Reset(ctx); err != nil {
		return err
	}
	if err := s.users.Reset(ctx); err != nil {
		return err
	}
	return nil
}

func (s *adminService) BackupDatabase(ctx context.Context) (string, error) {
	if err := s.requireStorage(); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s-%s.sqlite",
		s.keyPrefix,
		time.Now().UTC().Format("20060102-150405"),
		uuid.NewString(),
	)
	location, err := s.store.UploadFile(ctx, s.dbPath, storage.UploadOptions{
		Bucket: s.bucket,
		Key:    key,
	})
	if err != nil {
		return "", fmt.Errorf("backup database: %w", err)
	}
	return location, nil
}

func (s *adminService) ListBackups(ctx context.Context) ([]storage.ObjectInfo, error) {
	if err := s.requireStorage(); err != nil {
		return nil, err
	}
	return s.store.ListObjects(ctx, s.bucket, s.keyPrefix)
}

func (s *adminService) BackupDownloadURL(ctx context.Context, key string) (string, error) {
	if err := s.requireStorage(); err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("backup key is required: %w", domain.ErrValidation)
	}
	return s.store.GetObjectURL(ctx, s.bucket, key, 15*time.Minute)
}

func (s *adminService) PruneBackups(ctx context.Context, prefix string) error {
	if err := s.requireStorage(); err != nil {
		return err
	}
	if prefix == "" {
		return fmt.Errorf("prefix is required: %w", domain.ErrValidation)
	}
	return s.store.DeletePrefix(ctx, s.bucket, prefix)
}

func (s *adminService) requireStorage() error {
	if s.store == nil || s.bucket == "" {
		return fmt.Errorf("storage service not configured: %w", domain.ErrValidation)
	}
	return nil
}
