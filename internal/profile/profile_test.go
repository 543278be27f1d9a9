package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	assert.Equal(t, PROD, parse("prod", DEV))
	assert.Equal(t, TEST, parse(" Test ", DEV))
	assert.Equal(t, DEV, parse("", DEV))
	assert.Equal(t, DEV, parse("staging", DEV))
}
