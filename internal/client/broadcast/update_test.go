package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUpdate(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{"type":"server","id":"s1","payload":{"status":"offline"}}`))
	require.NoError(t, err)
	assert.Equal(t, "server", u.Type)
	assert.Equal(t, "s1", u.ID)
	assert.JSONEq(t, `{"status":"offline"}`, string(u.Payload))
}

func TestDecodeUpdate_IDFromPayload(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{"type":"server","payload":{"id":"s1","status":"offline"}}`))
	require.NoError(t, err)
	assert.Equal(t, "s1", u.ID)
}

func TestDecodeUpdate_FlatEntity(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{"type":"server","id":"s1","status":"offline"}`))
	require.NoError(t, err)
	assert.Equal(t, "server", u.Type)
	assert.Equal(t, "s1", u.ID)
	assert.JSONEq(t, `{"id":"s1","status":"offline"}`, string(u.Payload))
}

func TestDecodeUpdate_Malformed(t *testing.T) {
	frames := []string{
		`not json`,
		`[1,2]`,
		`{"id":"s1","payload":{}}`,
		`{"type":"server"}`,
		`{"type":"server","payload":null}`,
		`{"type":"server","payload":{"status":"offline"}}`,
		`{"type":"server","status":"offline"}`,
		`{"type":"server","payload":[1]}`,
	}
	for _, f := range frames {
		_, err := DecodeUpdate([]byte(f))
		assert.ErrorIs(t, err, ErrMalformedUpdate, f)
	}
}
