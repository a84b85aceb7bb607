package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
)

func TestInputEncode(t *testing.T) {
	tests := []struct {
		name      string
		in        Input
		wantType  Type
		wantRaw   string
		wantError string
	}{
		{name: "default string", in: Input{Value: json.RawMessage(`"hello"`)}, wantType: TypeString, wantRaw: "hello"},
		{name: "number as string type", in: Input{Value: json.RawMessage(`42`)}, wantType: TypeString, wantRaw: "42"},
		{name: "number", in: Input{Value: json.RawMessage(`3.5`), Type: TypeNumber}, wantType: TypeNumber, wantRaw: "3.5"},
		{name: "quoted number", in: Input{Value: json.RawMessage(`"10"`), Type: TypeNumber}, wantType: TypeNumber, wantRaw: "10"},
		{name: "boolean", in: Input{Value: json.RawMessage(`true`), Type: TypeBoolean}, wantType: TypeBoolean, wantRaw: "true"},
		{name: "json compacted", in: Input{Value: json.RawMessage(`{ "a": [1, 2] }`), Type: TypeJSON}, wantType: TypeJSON, wantRaw: `{"a":[1,2]}`},
		{name: "missing value", in: Input{}, wantError: "value is required"},
		{name: "bad type", in: Input{Value: json.RawMessage(`1`), Type: "date"}, wantError: "invalid setting type"},
		{name: "bad number", in: Input{Value: json.RawMessage(`"x"`), Type: TypeNumber}, wantError: "value must be a number"},
		{name: "bad boolean", in: Input{Value: json.RawMessage(`"maybe"`), Type: TypeBoolean}, wantError: "value must be a boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, raw, err := tt.in.encode()
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, typ)
			assert.Equal(t, tt.wantRaw, raw)
		})
	}
}

func TestDecode(t *testing.T) {
	assert.Equal(t, 5.0, decode("5", TypeNumber))
	assert.Equal(t, "five", decode("five", TypeNumber))
	assert.Equal(t, true, decode("true", TypeBoolean))
	assert.Equal(t, false, decode("no", TypeBoolean))
	assert.Equal(t, map[string]any{"a": 1.0}, decode(`{"a":1}`, TypeJSON))
	assert.Equal(t, "{broken", decode("{broken", TypeJSON))
	assert.Equal(t, "plain", decode("plain", TypeString))
}
