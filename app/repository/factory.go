package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory builds the repositories once per connection.
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// GetRepositories returns the shared repository set.
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

var (
	globalFactory *Factory
	factoryOnce   sync.Once
)

// InitializeFactory sets the process wide factory. Later calls are ignored.
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalRepositories panics when InitializeFactory has not run.
func GetGlobalRepositories() *Repositories {
	if globalFactory == nil {
		panic("repository factory not initialized, call InitializeFactory first")
	}
	return globalFactory.GetRepositories()
}
