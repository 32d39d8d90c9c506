package versions

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionInfo(t *testing.T) {
	t.Parallel()

	noVCS := func() map[string]string { return map[string]string{} }
	vcs := func() map[string]string {
		return map[string]string{
			"vcs.revision": "0123456789abcdef",
			"vcs.time":     "2025-05-04T10:20:30Z",
		}
	}

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
		vcs       func() map[string]string
		want      VersionInfo
	}{
		{
			name:      "release build keeps ldflags values",
			version:   "v1.2.3",
			commit:    "abc",
			buildDate: "2025-01-02T03:04:05Z",
			vcs:       vcs,
			want: VersionInfo{
				Version:   "v1.2.3",
				Commit:    "abc",
				BuildDate: "2025-01-02 03:04:05 UTC",
			},
		},
		{
			name:      "dev build reads vcs settings",
			version:   "dev",
			commit:    unknownStr,
			buildDate: unknownStr,
			vcs:       vcs,
			want: VersionInfo{
				Version:   "build-01234567",
				Commit:    "0123456789abcdef",
				BuildDate: "2025-05-04 10:20:30 UTC",
			},
		},
		{
			name:      "dev build without vcs",
			version:   "dev",
			commit:    unknownStr,
			buildDate: unknownStr,
			vcs:       noVCS,
			want: VersionInfo{
				Version:   "build-unknown",
				Commit:    unknownStr,
				BuildDate: unknownStr,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := versionInfo(tt.version, tt.commit, tt.buildDate, tt.vcs)
			tt.want.GoVersion = runtime.Version()
			tt.want.Platform = runtime.GOOS + "/" + runtime.GOARCH
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetVersionInfo(t *testing.T) {
	t.Parallel()

	info := GetVersionInfo()
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}
