package api

import (
	"fmt"
	"time"

	"coursekit/internal/config"
	"coursekit/internal/editor"
)

// NewCourseAPIFromConfig creates a CourseAPI implementation based on the api config type.
// token is only used by the rest backend.
func NewCourseAPIFromConfig(cfg config.APIConfig, token string, logger editor.Logger) (editor.CourseAPI, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryAPI(nil), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem api requires fs_root to be set")
		}
		return NewFileSystemAPI(cfg.FSRoot, nil)
	case "rest":
		return NewRestAPI(RestOptions{
			BaseURL:    cfg.BaseURL,
			Token:      token,
			Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
			MaxRetries: cfg.MaxRetries,
			Logger:     logger,
		})
	default:
		return nil, fmt.Errorf("unknown api type: %s", cfg.Type)
	}
}
