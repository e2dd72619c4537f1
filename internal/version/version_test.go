package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	v, c, b := Version, CommitSHA, BuildTime
	t.Cleanup(func() { Version, CommitSHA, BuildTime = v, c, b })

	Version, CommitSHA, BuildTime = "1.2.0", "abc123", "2026-01-01"
	assert.Equal(t, "1.2.0 (abc123) built at 2026-01-01", GetVersion())
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, Platform())
}
