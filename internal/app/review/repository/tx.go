package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories - набор репозиториев, привязанных к одному соединению
// или одной открытой транзакции
type Repositories struct {
	Submissions SubmissionRepository
	Sessions    SessionRepository
	Profiles    ProfileRepository
}

// NewRepositories привязывает набор репозиториев к db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Submissions: NewSubmissionRepository(db),
		Sessions:    NewSessionRepository(db),
		Profiles:    NewProfileRepository(db),
	}
}

// TxManager исполняет функцию внутри одной транзакции БД.
// Publish Coordinator - единственный клиент: публикация - единственная
// операция системы, затрагивающая несколько сущностей разом
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager создает менеджер транзакций поверх GORM
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

// WithinTransaction открывает транзакцию и передает fn набор репозиториев,
// привязанных к ней. Ошибка fn откатывает все изменения целиком
func (m *gormTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	})
}
