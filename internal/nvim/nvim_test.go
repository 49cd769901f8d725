package nvim

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReloaderWithoutInstance(t *testing.T) {
	t.Setenv(AddressEnv, "")
	err := Reloader{}.Reload("script.py")
	assert.ErrorIs(t, err, ErrNoInstance)
}

func TestDialUnreachable(t *testing.T) {
	addr := filepath.Join(t.TempDir(), "missing.sock")
	_, err := Dial(addr)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoInstance)
}
