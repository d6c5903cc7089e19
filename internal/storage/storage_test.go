package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey(DefaultKey))
	assert.NoError(t, ValidateKey("list.v2"))

	for _, bad := range []string{"", "../etc", "a/b", ".hidden", "with space"} {
		assert.Error(t, ValidateKey(bad), bad)
	}
}
