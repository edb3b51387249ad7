package serial

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	s, err := Encode("SEASCAPE", "M", "GALLERY1", 7)
	require.NoError(t, err)
	assert.Equal(t, "PTG-SEASCAPE-M-GALLERY1-0007", s)

	s, err = Encode("A", "B", "C", 0)
	require.NoError(t, err)
	assert.Equal(t, "PTG-A-B-C-0000", s)

	s, err = Encode("A", "B", "C", 9999)
	require.NoError(t, err)
	assert.Equal(t, "PTG-A-B-C-9999", s)
}

func TestEncodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name              string
		painting, variant string
		location          string
		seq               int
	}{
		{"empty painting", "", "B", "C", 1},
		{"empty variant", "A", "", "C", 1},
		{"empty location", "A", "B", "", 1},
		{"lowercase token", "a", "B", "C", 1},
		{"separator in token", "A-X", "B", "C", 1},
		{"space in token", "A X", "B", "C", 1},
		{"negative sequence", "A", "B", "C", -1},
		{"sequence too large", "A", "B", "C", 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.painting, tt.variant, tt.location, tt.seq)
			var fe *FormatError
			assert.True(t, errors.As(err, &fe), "expected FormatError, got %v", err)
		})
	}
}

func TestDecode(t *testing.T) {
	c, err := Decode("PTG-SEASCAPE-M-GALLERY1-0007")
	require.NoError(t, err)
	assert.Equal(t, Components{Painting: "SEASCAPE", Variant: "M", Location: "GALLERY1", Sequence: 7}, c)
}

func TestDecodeCanonicalizesCase(t *testing.T) {
	c, err := Decode("  ptg-seascape-m-Gallery1-0042 ")
	require.NoError(t, err)
	assert.Equal(t, "SEASCAPE", c.Painting)
	assert.Equal(t, "M", c.Variant)
	assert.Equal(t, "GALLERY1", c.Location)
	assert.Equal(t, 42, c.Sequence)
	assert.Equal(t, "PTG-SEASCAPE-M-GALLERY1-0042", c.String())
}

func TestDecodeRejectsMalformed(t *testing.T) {
	inputs := []string{
		"",
		"PTG",
		"PTG-A-B-C",
		"PTG-A-B-C-0001-X",
		"XYZ-A-B-C-0001",
		"PTG--B-C-0001",
		"PTG-A--C-0001",
		"PTG-A-B--0001",
		"PTG-A-B-C-001",
		"PTG-A-B-C-00001",
		"PTG-A-B-C-00a1",
		"PTG-A-B-C-+001",
		"PTG-A_1-B-C-0001",
		"PTG-A-B-C D-0001",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Decode(in)
			var fe *FormatError
			require.True(t, errors.As(err, &fe), "expected FormatError for %q, got %v", in, err)
			assert.Equal(t, in, fe.Input)
			assert.False(t, Validate(in))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	tokens := []string{"A", "Z9", "SEASCAPE", "GALLERY1", "0", "CANV24X3SN"}
	sequences := []int{0, 1, 7, 42, 999, 1000, 9998, 9999}

	for _, p := range tokens {
		for _, v := range tokens {
			for _, l := range tokens {
				for _, n := range sequences {
					s, err := Encode(p, v, l, n)
					require.NoError(t, err)
					assert.True(t, Validate(s))

					got, err := Decode(s)
					require.NoError(t, err)
					assert.Equal(t, Components{Painting: p, Variant: v, Location: l, Sequence: n}, got,
						fmt.Sprintf("round trip of %s", s))
				}
			}
		}
	}
}

func TestCanonical(t *testing.T) {
	s, err := Canonical("ptg-a-b-c-0001")
	require.NoError(t, err)
	assert.Equal(t, "PTG-A-B-C-0001", s)

	_, err = Canonical("nope")
	assert.Error(t, err)
}

func TestNext(t *testing.T) {
	c := Components{Painting: "A", Variant: "B", Location: "C", Sequence: 41}
	n, err := Next(c)
	require.NoError(t, err)
	assert.Equal(t, 42, n.Sequence)
	assert.Equal(t, "PTG-A-B-C-", n.Prefix())

	c.Sequence = MaxSequence
	_, err = Next(c)
	assert.Error(t, err)
}

func TestVariantCode(t *testing.T) {
	tests := []struct {
		category, size   string
		stretch, framing bool
		want             string
	}{
		{"Canvas", "24x36", true, false, "CANV24X3SN"},
		{"Print", "A4", false, true, "PRINA4NF"},
		{"gi-clée", "12 x 16", true, true, "GICL1216SF"},
		{"", "", false, false, "NN"},
	}

	for _, tt := range tests {
		got := VariantCode(tt.category, tt.size, tt.stretch, tt.framing)
		assert.Equal(t, tt.want, got)
		assert.True(t, IsToken(got))
	}
}
