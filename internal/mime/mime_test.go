package mime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"index.html", "text/html"},
		{"Build/game.loader.js", "application/javascript"},
		{"TemplateData/style.css", "text/css"},
		{"Build/game.json", "application/json"},
		{"Build/game.wasm", "application/wasm"},
		{"TemplateData/favicon.ico", "image/x-icon"},
		{"logo.PNG", "image/png"},
		{"photo.jpeg", "image/jpeg"},
		{"fonts/a.woff2", "font/woff2"},
		{"Build/game.data", Default},
		{"Build/game.wasm.br", Default},
		{"README", Default},
		{"", Default},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.name))
		})
	}
}

func TestIsText(t *testing.T) {
	assert.True(t, IsText("text/html"))
	assert.True(t, IsText("text/css"))
	assert.True(t, IsText(JavaScript))
	assert.True(t, IsText(JSON))
	assert.False(t, IsText("application/wasm"))
	assert.False(t, IsText("image/svg+xml"))
	assert.False(t, IsText(Default))
}

func TestIsTextName(t *testing.T) {
	assert.True(t, IsTextName("index.html"))
	assert.True(t, IsTextName("TemplateData/logo.svg"))
	assert.True(t, IsTextName("notes.MD"))
	assert.False(t, IsTextName("Build/game.wasm"))
	assert.False(t, IsTextName("Build/game.data.gz"))
}

func TestEncoding(t *testing.T) {
	inner, enc := Encoding("Build/game.wasm.br")
	assert.Equal(t, "Build/game.wasm", inner)
	assert.Equal(t, "br", enc)

	inner, enc = Encoding("Build/game.framework.js.gz")
	assert.Equal(t, "Build/game.framework.js", inner)
	assert.Equal(t, "gzip", enc)

	inner, enc = Encoding("Build/game.wasm")
	assert.Equal(t, "Build/game.wasm", inner)
	assert.Empty(t, enc)
}
