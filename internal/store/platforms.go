package store

import "context"

// Platform is a streaming platform the catalog links movies to.
type Platform struct {
	ID       int64  `json:"id"`
	Name     string `json:"platform_name"`
	LogoPath string `json:"logo_path,omitempty"`
}

type PlatformPatch struct {
	Name     *string
	LogoPath *string
}

type PlatformStore interface {
	List(ctx context.Context) ([]Platform, error)
	GetByID(ctx context.Context, id int64) (Platform, error)
	Create(ctx context.Context, p Platform) (Platform, error)
	Update(ctx context.Context, id int64, patch PlatformPatch) (Platform, error)
	Delete(ctx context.Context, id int64) (Platform, error)
}
