package types

import (
	"encoding/json"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestHexBytesJSON(t *testing.T) {
	c := qt.New(t)
	b := HexBytes{0x01, 0xab, 0xff}
	data, err := json.Marshal(b)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, `"0x01abff"`)

	var decoded HexBytes
	c.Assert(json.Unmarshal(data, &decoded), qt.IsNil)
	c.Assert(decoded, qt.DeepEquals, b)

	// the prefix is optional
	c.Assert(json.Unmarshal([]byte(`"01abff"`), &decoded), qt.IsNil)
	c.Assert(decoded, qt.DeepEquals, b)

	err = json.Unmarshal([]byte(`"zz"`), &decoded)
	c.Assert(errors.Is(err, ErrSerialization), qt.IsTrue)
}

func TestHexStringToHexBytes(t *testing.T) {
	c := qt.New(t)
	c.Assert(HexStringToHexBytes("0x0102"), qt.DeepEquals, HexBytes{1, 2})
	c.Assert(HexStringToHexBytes("0102").BigInt().MathBigInt().Int64(), qt.Equals, int64(258))
	c.Assert(func() { HexStringToHexBytes("0xz") }, qt.PanicMatches, ".*invalid byte.*")
}
