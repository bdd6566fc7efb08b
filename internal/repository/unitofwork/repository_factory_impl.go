package unitofwork

import (
	"context"

	"gorm.io/gorm"
)

type RepositoryFactoryImpl struct {
	db         *gorm.DB
	dimensions int
}

func NewRepositoryFactory(db *gorm.DB, dimensions int) RepositoryFactory {
	return &RepositoryFactoryImpl{
		db:         db,
		dimensions: dimensions,
	}
}

// NewUnitOfWork is short lived, one per request. Begin takes the context
// that scopes the transaction.
func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db, f.dimensions)
}
