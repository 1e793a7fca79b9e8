package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewCIReporter(&buf)

	r.Start(2)
	r.Update(1, "index.html")
	r.Update(2, "Build/game.wasm")
	r.Finish()

	assert.Equal(t, "Uploading 2 files\n[1/2] index.html\n[2/2] Build/game.wasm\nUpload complete\n", buf.String())
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	_, ok := NewReporter("Uploading").(*CIReporter)
	assert.True(t, ok)
}
