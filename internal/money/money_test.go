package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Cents
	}{
		{"125.50", 12550},
		{"125.5", 12550},
		{"125", 12500},
		{"0.01", 1},
		{"0", 0},
		{"-10.25", -1025},
		{".50", 50},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234", "1.2.3", "12,50", "1.-5", "376.-1", "1.+5", "-", ".", "1e2"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "376.50", Cents(37650).String())
	assert.Equal(t, "0.05", Cents(5).String())
	assert.Equal(t, "0.00", Cents(0).String())
	assert.Equal(t, "-10.25", Cents(-1025).String())
}

func TestMul(t *testing.T) {
	price, err := Parse("125.50")
	assert.NoError(t, err)
	assert.Equal(t, "376.50", price.Mul(3).String())
}

func TestJSONRoundTrip(t *testing.T) {
	var c Cents
	assert.NoError(t, json.Unmarshal([]byte(`125.50`), &c))
	assert.Equal(t, Cents(12550), c)

	assert.NoError(t, json.Unmarshal([]byte(`"376.50"`), &c))
	assert.Equal(t, Cents(37650), c)

	out, err := json.Marshal(Cents(37650))
	assert.NoError(t, err)
	assert.Equal(t, "376.50", string(out))
}
