package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseAlwaysCarriesFlags(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "failure",
			msg:  Message{Response: true, ID: "1", FilePath: "missing.js", Error: "File not found"},
			want: `{"response":true,"id":"1","filePath":"missing.js","success":false,"isText":false,"error":"File not found"}`,
		},
		{
			name: "binary",
			msg:  Message{Response: true, ID: "2", FilePath: "Build/game.wasm", Success: true, Content: "AGFzbQ==", ContentType: "application/wasm"},
			want: `{"response":true,"id":"2","filePath":"Build/game.wasm","success":true,"content":"AGFzbQ==","contentType":"application/wasm","isText":false}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}
