package shared

// BaseAggregateRoot adds the optimistic-lock version to BaseEntity. Claims
// and payment headers bump the version on every decision or recompute; a
// stale version at save time is a concurrency conflict.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// IncrementVersion bumps the optimistic-lock version.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot mints an aggregate identity at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}
