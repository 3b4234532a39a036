package principal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasDescriptor(t *testing.T) {
	p := &Principal{}
	assert.False(t, p.HasDescriptor())

	// Any stored value counts as enrolled, even one shorter than the
	// canonical base64 encoding produces.
	p.Descriptor = "W10="
	assert.True(t, p.HasDescriptor())
	p.Descriptor = "x"
	assert.True(t, p.HasDescriptor())
}
