package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"employee/internal/models"
	"employee/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDB opens a private in-memory SQLite database with every table migrated.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func strPtr(s string) *string { return &s }

func TestGORMFormFieldRepository_OrderingAndOwnership(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMFormFieldRepository(db)
	ctx := context.Background()

	next, err := repo.NextOrder(ctx, "owner-a")
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	first := &models.FormField{OwnerID: "owner-a", Label: "Name", Type: models.FieldTypeText, Order: 1}
	second := &models.FormField{OwnerID: "owner-a", Label: "Age", Type: models.FieldTypeNumber, Order: 0}
	foreign := &models.FormField{OwnerID: "owner-b", Label: "Secret", Type: models.FieldTypeText, Order: 7}
	for _, f := range []*models.FormField{first, second, foreign} {
		require.NoError(t, repo.Create(ctx, f))
		assert.NotEmpty(t, f.ID)
	}

	next, err = repo.NextOrder(ctx, "owner-a")
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	fields, err := repo.ListByOwner(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, second.ID, fields[0].ID)
	assert.Equal(t, first.ID, fields[1].ID)

	_, err = repo.GetByID(ctx, "owner-a", foreign.ID)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	moved, err := repo.SetOrder(ctx, "owner-a", foreign.ID, 0)
	require.NoError(t, err)
	assert.False(t, moved)

	err = repo.Delete(ctx, "owner-a", foreign.ID)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	foreign.OwnerID = "owner-a"
	foreign.Label = "Hijacked"
	err = repo.Update(ctx, foreign)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	stored, err := repo.GetByID(ctx, "owner-b", foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, "Secret", stored.Label)
}

func TestGORMFormFieldRepository_UpdateKeepsFalseRequired(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMFormFieldRepository(db)
	ctx := context.Background()

	field := &models.FormField{OwnerID: "owner-a", Label: "Notes", Type: models.FieldTypeTextArea, Required: true}
	require.NoError(t, repo.Create(ctx, field))

	field.Required = false
	field.Order = 0
	require.NoError(t, repo.Update(ctx, field))

	stored, err := repo.GetByID(ctx, "owner-a", field.ID)
	require.NoError(t, err)
	assert.False(t, stored.Required)
}

func TestGORMTransactor_RollsBackOnError(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMFormFieldRepository(db)
	tx := repositories.NewGORMTransactor(db)
	ctx := context.Background()

	field := &models.FormField{OwnerID: "owner-a", Label: "Name", Type: models.FieldTypeText}
	require.NoError(t, repo.Create(ctx, field))

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.SetOrder(ctx, "owner-a", field.ID, 5); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := repo.GetByID(ctx, "owner-a", field.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Order)
}

func TestGORMEmployeeRepository_SnapshotRoundTrip(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMEmployeeRepository(db)
	ctx := context.Background()

	values := models.FieldValues{
		"Name": {Value: strPtr("Jane Smith"), Type: models.FieldTypeText},
		"Age":  {Value: nil, Type: models.FieldTypeNumber},
	}
	employee := &models.Employee{OwnerID: "owner-a", Values: datatypes.NewJSONType(values)}
	require.NoError(t, repo.Create(ctx, employee))

	stored, err := repo.GetByID(ctx, "owner-a", employee.ID)
	require.NoError(t, err)
	assert.Equal(t, values, stored.Values.Data())

	_, err = repo.GetByID(ctx, "owner-b", employee.ID)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	stored.Values = datatypes.NewJSONType(models.FieldValues{
		"Name": {Value: strPtr("John Doe"), Type: models.FieldTypeText},
	})
	require.NoError(t, repo.Update(ctx, stored))

	list, err := repo.ListByOwner(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "John Doe", *list[0].Values.Data()["Name"].Value)
	_, hasAge := list[0].Values.Data()["Age"]
	assert.False(t, hasAge)

	others, err := repo.ListByOwner(ctx, "owner-b")
	require.NoError(t, err)
	assert.Empty(t, others)

	assert.True(t, errors.Is(repo.Delete(ctx, "owner-b", employee.ID), repositories.ErrNotFound))
	require.NoError(t, repo.Delete(ctx, "owner-a", employee.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, "owner-a", employee.ID), repositories.ErrNotFound))
}

func TestGORMAccountRepository(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMAccountRepository(db)
	ctx := context.Background()

	account := &models.Account{Email: "jane@example.com", Password: "hash", FirstName: "Jane", LastName: "Smith"}
	require.NoError(t, repo.Create(ctx, account))

	byEmail, err := repo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)

	byEmail.Phone = strPtr("555-0100")
	require.NoError(t, repo.Update(ctx, byEmail))

	byID, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.Phone)
	assert.Equal(t, "555-0100", *byID.Phone)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	duplicate := &models.Account{Email: "jane@example.com", Password: "hash", FirstName: "J", LastName: "S"}
	err = repo.Create(ctx, duplicate)
	assert.True(t, errors.Is(err, repositories.ErrConflict), "got %v", err)

	other := &models.Account{Email: "john@example.com", Password: "hash", FirstName: "John", LastName: "Smith"}
	require.NoError(t, repo.Create(ctx, other))
	other.Email = "jane@example.com"
	err = repo.Update(ctx, other)
	assert.True(t, errors.Is(err, repositories.ErrConflict), "got %v", err)
}
