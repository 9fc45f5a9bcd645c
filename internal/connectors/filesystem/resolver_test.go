package filesystem

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRoot(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{
			name: "file:// URI is converted to local path",
			uri:  "file:///Users/test/project",
			want: filepath.Clean("/Users/test/project"),
		},
		{
			name: "file:// URI with spaces",
			uri:  "file:///Users/test/my project",
			want: filepath.Clean("/Users/test/my project"),
		},
		{
			name: "bare path is cleaned",
			uri:  "src/../app/",
			want: "app",
		},
		{
			name: "empty means working directory",
			uri:  "",
			want: ".",
		},
		{
			name: "bare file scheme means working directory",
			uri:  "file://",
			want: ".",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRoot(tt.uri))
		})
	}
}
