package contracts

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFullVersionString(t *testing.T) {
	full := GetFullVersionString()
	assert.Contains(t, full, GetVersionString())
	assert.Contains(t, full, "go: "+runtime.Version())
	assert.Contains(t, full, runtime.GOOS+"/"+runtime.GOARCH)
}
