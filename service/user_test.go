package service

import (
	"context"
	"errors"
	"testing"

	"roleplay/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestUserService_Register(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret123", user.Password)
	assert.Len(t, user.ID, 36)

	_, err = svc.Register(ctx, "alice", "other@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(ctx, "alice2", "alice@example.com", "secret123")
	assert.ErrorIs(t, err, ErrEmailTaken)

	// 用户名和邮箱都冲突时先报用户名
	_, err = svc.Register(ctx, "alice", "alice@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserService_Authenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidLogin)
	_, err = svc.Authenticate(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidLogin)

	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "alice").Update("is_active", false).Error)
	_, err = svc.Authenticate(ctx, "alice", "secret123")
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestUserService_Register_ConcurrentEmailConflict(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	countUsername := "SELECT count\\(\\*\\) FROM `users` WHERE username"
	countEmail := "SELECT count\\(\\*\\) FROM `users` WHERE email"

	// 预检查通过，插入时另一请求已抢先注册了同一邮箱
	mock.ExpectQuery(countUsername).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(countEmail).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'bob@example.com' for key 'users.email'"))
	mock.ExpectRollback()
	mock.ExpectQuery(countUsername).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(countEmail).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err = NewUserService(gormDB).Register(context.Background(), "bob", "bob@example.com", "secret123")
	assert.ErrorIs(t, err, ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}
