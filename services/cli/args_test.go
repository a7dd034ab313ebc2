package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
)

func TestUintWordAcceptsBasePrefixes(t *testing.T) {
	a := wordArgs([]string{"0x10", "42"})
	v, ok, err := a.Uint("n", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(16), v)

	v, ok, err = a.Uint("m", 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(42), v)

	_, _, err = a.Uint("n", 5)
	assert.NoError(t, err, "absent positional is not an error")
}

func TestUintJSONRejectsNegativeAndNonNumeric(t *testing.T) {
	a := jsonArgs(map[string]any{"n": -1.0, "s": "nope"})
	_, _, err := a.Uint("n", 0)
	assert.Equal(t, errcode.InvalidParams, err)
	_, _, err = a.Uint("s", 0)
	assert.Equal(t, errcode.InvalidParams, err)
}

func TestBoolForms(t *testing.T) {
	a := wordArgs([]string{"on", "false", "1", "maybe"})
	for i, want := range []bool{true, false, true} {
		v, ok, err := a.Bool("k", i)
		require.NoError(t, err, "pos %d", i)
		require.True(t, ok)
		assert.Equal(t, want, v, "pos %d", i)
	}
	_, _, err := a.Bool("k", 3)
	assert.Equal(t, errcode.InvalidParams, err)

	j := jsonArgs(map[string]any{"on": true, "bad": "yes"})
	v, ok, err := j.Bool("on", 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, v)
	_, _, err = j.Bool("bad", 0)
	assert.Equal(t, errcode.InvalidParams, err)
}

func TestPayloadDecoding(t *testing.T) {
	a := wordArgs([]string{"aGk="}) // "hi"
	p, err := a.Payload(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), p)

	_, err = wordArgs([]string{"%%%"}).Payload(0)
	assert.Equal(t, errcode.InvalidParams, err)

	_, err = wordArgs(nil).Payload(0)
	assert.Equal(t, errcode.MissingArg, err)

	_, err = jsonArgs(map[string]any{"payload_b64": ""}).Payload(0)
	assert.Equal(t, errcode.EmptyPayload, err)
}

func TestRGBKeysAndPositionals(t *testing.T) {
	j := jsonArgs(map[string]any{"r": 1.0, "g": 2.0, "b": 3.0})
	r, g, b, ok, err := j.RGB(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, [3]uint8{1, 2, 3}, [3]uint8{r, g, b})

	w := wordArgs([]string{"10", "20", "30"})
	r, g, b, ok, err = w.RGB(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, [3]uint8{10, 20, 30}, [3]uint8{r, g, b})

	// Keys-only lookup must ignore positional tokens.
	_, _, _, ok, err = wordArgs([]string{"notanumber"}).RGB(-1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, _, _, err = jsonArgs(map[string]any{"r": 300.0}).RGB(0)
	assert.Equal(t, errcode.InvalidParams, err)
}
