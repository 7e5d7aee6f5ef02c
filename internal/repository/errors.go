package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrDuplicate 唯一约束冲突（含并发写入竞争）
	ErrDuplicate = errors.New("repository: duplicate key")
	// ErrProfileClaimed 账号已持有另一种档案
	ErrProfileClaimed = errors.New("repository: account already holds a profile")
)

const pgUniqueViolation = "23505"

// translateError 将存储层唯一约束冲突统一为 ErrDuplicate
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	return err
}

// IsNotFound 记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
