package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticDirectory(t *testing.T) {
	d := NewStaticDirectory([]string{"a", "", "b", "a"}, "rev")
	approvers, err := d.Approvers(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, approvers)

	reviewer, err := d.Reviewer(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "rev", reviewer)
}
