package version_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/macropower/organize/pkg/version"
)

func TestInfo_String(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		info version.Info
		want string
	}{
		"release": {
			info: version.Info{
				Version:   "v1.2.0",
				Revision:  "1a2b3c4",
				BuildDate: "2026-01-02",
				GoVersion: "go1.25.5",
				Platform:  "linux/amd64",
			},
			want: "v1.2.0 (rev 1a2b3c4, built 2026-01-02, go1.25.5 linux/amd64)",
		},
		"development build": {
			info: version.Info{
				Revision:  "1a2b3c4",
				GoVersion: "go1.25.5",
				Platform:  "darwin/arm64",
				Modified:  true,
			},
			want: "1a2b3c4-dirty (rev 1a2b3c4, go1.25.5 darwin/arm64)",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.info.String())
		})
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	info := version.Get()
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.NotEmpty(t, info.Revision)
	assert.Contains(t, version.GetVersion(), info.Platform)
}
