package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoOpSatisfiesBackend(t *testing.T) {
	var b Backend = NoOp{}
	assert.NoError(t, b.ExportFrame(1, nil))
	assert.NoError(t, b.WriteVTK("ignored", nil))
	assert.NoError(t, b.PersistArchive("ignored", nil))
}
