package api

import (
	"testing"

	"coursekit/internal/config"
	"coursekit/internal/editor"
)

func TestNewCourseAPIFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.APIConfig
		want    string
		wantErr bool
	}{
		{name: "memory", cfg: config.APIConfig{Type: "memory"}, want: "*api.MemoryAPI"},
		{name: "filesystem", cfg: config.APIConfig{Type: "filesystem", FSRoot: t.TempDir()}, want: "*api.FileSystemAPI"},
		{name: "filesystem without root", cfg: config.APIConfig{Type: "filesystem"}, wantErr: true},
		{name: "rest", cfg: config.APIConfig{Type: "rest", BaseURL: "http://localhost:8080/api", MaxRetries: 2}, want: "*api.RestAPI"},
		{name: "rest without url", cfg: config.APIConfig{Type: "rest"}, wantErr: true},
		{name: "unknown", cfg: config.APIConfig{Type: "grpc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCourseAPIFromConfig(tt.cfg, "token", editor.NewNopLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCourseAPIFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name := typeName(got); name != tt.want {
				t.Errorf("NewCourseAPIFromConfig() type = %s, want %s", name, tt.want)
			}
		})
	}
}

func typeName(a editor.CourseAPI) string {
	switch a.(type) {
	case *MemoryAPI:
		return "*api.MemoryAPI"
	case *FileSystemAPI:
		return "*api.FileSystemAPI"
	case *RestAPI:
		return "*api.RestAPI"
	}
	return "unknown"
}
