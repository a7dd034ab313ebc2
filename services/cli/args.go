package cli

import (
	"encoding/base64"
	"strconv"

	"github.com/MycosoftLabs/mycosoft-mas-sub017/errcode"
)

// Args presents one command's parameters uniformly to handlers, whether the
// line arrived as whitespace tokens (`optx start AAEC 20 manchester`) or as
// a JSON object (`{"cmd":"optx.start","payload_b64":"AAEC","rate":20,...}`).
// JSON fields are looked up by key; word-form tokens by position.
type Args struct {
	argv []string
	obj  map[string]any
}

func wordArgs(argv []string) *Args      { return &Args{argv: argv} }
func jsonArgs(obj map[string]any) *Args { return &Args{obj: obj} }

// Str fetches a string parameter.
func (a *Args) Str(key string, pos int) (string, bool) {
	if a.obj != nil {
		s, ok := a.obj[key].(string)
		return s, ok
	}
	if pos >= 0 && pos < len(a.argv) {
		return a.argv[pos], true
	}
	return "", false
}

// Uint fetches an unsigned integer parameter. Word form accepts 0x/0b
// prefixes. Returns errcode.InvalidParams on a malformed value and
// (0,false,nil) when absent.
func (a *Args) Uint(key string, pos int) (uint64, bool, error) {
	if a.obj != nil {
		v, ok := a.obj[key]
		if !ok {
			return 0, false, nil
		}
		f, ok := v.(float64)
		if !ok || f < 0 {
			return 0, false, errcode.InvalidParams
		}
		return uint64(f), true, nil
	}
	if pos < 0 || pos >= len(a.argv) {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(a.argv[pos], 0, 64)
	if err != nil {
		return 0, false, errcode.InvalidParams
	}
	return v, true, nil
}

// UintDefault is Uint with a fallback for the common optional-parameter case.
func (a *Args) UintDefault(key string, pos int, def uint64) (uint64, error) {
	v, ok, err := a.Uint(key, pos)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Bool fetches a boolean. Word form accepts on/off, true/false, 1/0.
func (a *Args) Bool(key string, pos int) (val, ok bool, err error) {
	if a.obj != nil {
		v, present := a.obj[key]
		if !present {
			return false, false, nil
		}
		b, isBool := v.(bool)
		if !isBool {
			return false, false, errcode.InvalidParams
		}
		return b, true, nil
	}
	s, present := a.Str(key, pos)
	if !present {
		return false, false, nil
	}
	switch s {
	case "on", "true", "1":
		return true, true, nil
	case "off", "false", "0":
		return false, true, nil
	}
	return false, false, errcode.InvalidParams
}

// BoolDefault is Bool with a fallback.
func (a *Args) BoolDefault(key string, pos int, def bool) (bool, error) {
	v, ok, err := a.Bool(key, pos)
	if err != nil {
		return false, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Payload decodes the transmit payload: field "payload_b64" in JSON form,
// or the positional token in word form. Standard base64.
func (a *Args) Payload(pos int) ([]byte, error) {
	s, ok := a.Str("payload_b64", pos)
	if !ok {
		return nil, errcode.MissingArg
	}
	p, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errcode.InvalidParams
	}
	if len(p) == 0 {
		return nil, errcode.EmptyPayload
	}
	return p, nil
}

// RGB fetches a colour triplet: keys r/g/b, or three consecutive tokens
// starting at pos. A negative pos means keys only. Absent entirely
// -> (0,0,0,false).
func (a *Args) RGB(pos int) (r, g, b uint8, ok bool, err error) {
	gpos, bpos := pos+1, pos+2
	if pos < 0 {
		gpos, bpos = -1, -1
	}
	rv, rok, err := a.Uint("r", pos)
	if err != nil {
		return 0, 0, 0, false, err
	}
	gv, gok, err := a.Uint("g", gpos)
	if err != nil {
		return 0, 0, 0, false, err
	}
	bv, bok, err := a.Uint("b", bpos)
	if err != nil {
		return 0, 0, 0, false, err
	}
	if !rok && !gok && !bok {
		return 0, 0, 0, false, nil
	}
	if rv > 255 || gv > 255 || bv > 255 {
		return 0, 0, 0, false, errcode.InvalidParams
	}
	return uint8(rv), uint8(gv), uint8(bv), true, nil
}
