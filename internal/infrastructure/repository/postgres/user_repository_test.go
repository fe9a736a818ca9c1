package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

func TestUserRepositoryGetUserByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "email", "name", "password_hash", "clinic_id", "role", "created_at", "updated_at",
	}).AddRow(
		"u-1", "dr.lee@clinic.test", "Dr. Lee", "$2a$10$hash", "clinic-1", "user",
		time.Now(), time.Now(),
	)

	mock.ExpectQuery("FROM users").
		WithArgs("dr.lee@clinic.test").
		WillReturnRows(rows)

	user, err := repo.GetUserByEmail(context.Background(), "dr.lee@clinic.test")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("role = %q", user.Role)
	}
	if user.ClinicID != "clinic-1" {
		t.Errorf("clinicId = %q", user.ClinicID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserRepositoryGetUserByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)
	mock.ExpectQuery("FROM users").
		WithArgs("ghost@clinic.test").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "name", "password_hash", "clinic_id", "role", "created_at", "updated_at",
		}))

	_, err = repo.GetUserByEmail(context.Background(), "ghost@clinic.test")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestUserRepositoryCreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)
	now := time.Now()
	mock.ExpectExec("INSERT INTO users").
		WithArgs("u-1", "dr.lee@clinic.test", "Dr. Lee", "$2a$10$hash", "clinic-1", "user", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.CreateUser(context.Background(), &domain.User{
		ID:           "u-1",
		Email:        "dr.lee@clinic.test",
		Name:         "Dr. Lee",
		PasswordHash: "$2a$10$hash",
		ClinicID:     "clinic-1",
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
