package drafts

import (
	"context"
	"fmt"

	"coursekit/internal/config"
	"coursekit/internal/editor"
)

// NewDraftStoreFromConfig creates a draft store based on the configuration type.
// It returns an error if the store type is unknown.
func NewDraftStoreFromConfig(ctx context.Context, cfg config.DraftsConfig) (editor.DraftStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem drafts store requires a directory")
		}
		return NewFileSystemStore(cfg.Dir)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown drafts store type: %q", cfg.Type)
	}
}
