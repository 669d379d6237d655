package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

const zeroPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestParseEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input      string
		want       Encoding
		suggestion string
	}{
		{input: "hex", want: Hex},
		{input: " Base64 ", want: Base64},
		{input: "MNEMONIC", want: Mnemonic},
		{input: "hx", suggestion: "did you mean 'hex'?"},
		{input: "base46", suggestion: "did you mean 'base64'?"},
		{input: "ascii85", suggestion: "supported: hex, base64, mnemonic"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseEncoding(tc.input)
			if tc.suggestion == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
				return
			}

			require.ErrorIs(t, err, tycheerr.ErrUnknownEncoding)
			var te *tycheerr.TycheError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tc.suggestion, te.Suggestion)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte{0xDE, 0xAD, 0xBE, 0xEF}, 4)
	for _, e := range Encodings {
		t.Run(string(e), func(t *testing.T) {
			t.Parallel()

			text, err := Encode(e, data)
			require.NoError(t, err)

			back, err := Decode(e, text)
			require.NoError(t, err)
			assert.Equal(t, data, back)
		})
	}
}

func TestEncode_Known(t *testing.T) {
	t.Parallel()

	text, err := Encode(Hex, []byte{0x00, 0xff})
	require.NoError(t, err)
	assert.Equal(t, "00ff", text)

	text, err = Encode(Base64, []byte("tyche"))
	require.NoError(t, err)
	assert.Equal(t, "dHljaGU=", text)

	text, err = Encode(Mnemonic, make([]byte, 16))
	require.NoError(t, err)
	assert.Equal(t, zeroPhrase, text)

	_, err = Encode(Encoding("rot13"), nil)
	require.ErrorIs(t, err, tycheerr.ErrUnknownEncoding)
}

func TestDecode_Hex(t *testing.T) {
	t.Parallel()

	b, err := Decode(Hex, " 0x0aff\n")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0xff}, b)

	_, err = Decode(Hex, "zz")
	require.ErrorIs(t, err, tycheerr.ErrInvalidFormat)

	_, err = Decode(Base64, "***")
	require.ErrorIs(t, err, tycheerr.ErrInvalidFormat)

	_, err = Decode(Encoding("rot13"), "x")
	require.ErrorIs(t, err, tycheerr.ErrUnknownEncoding)
}

func TestEncodeMnemonic_Lengths(t *testing.T) {
	t.Parallel()

	for size := 12; size <= 36; size++ {
		phrase, err := EncodeMnemonic(make([]byte, size))
		switch size {
		case 16, 20, 24, 28, 32:
			require.NoError(t, err, "size %d", size)
			assert.Len(t, strings.Fields(phrase), size*3/4, "size %d", size)

			back, err := DecodeMnemonic(phrase)
			require.NoError(t, err)
			assert.Equal(t, make([]byte, size), back)
		default:
			require.ErrorIs(t, err, tycheerr.ErrInvalidLength, "size %d", size)
		}
	}
}

func TestDecodeMnemonic_Vector(t *testing.T) {
	t.Parallel()

	b, err := DecodeMnemonic("legal winner thank year wave sausage worth useful legal winner thank yellow")
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0x7f}, 16), b)
}

func TestDecodeMnemonic_Normalizes(t *testing.T) {
	t.Parallel()

	input := "1. Abandon, abandon\n2) abandon  abandon abandon abandon\tabandon abandon abandon abandon abandon ABOUT "
	b, err := DecodeMnemonic(input)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 16), b)
}

func TestDecodeMnemonic_Invalid(t *testing.T) {
	t.Parallel()

	_, err := DecodeMnemonic("   ")
	require.ErrorIs(t, err, tycheerr.ErrInvalidMnemonic)

	// Bad checksum: every word valid
	_, err = DecodeMnemonic(strings.Repeat("abandon ", 12))
	require.ErrorIs(t, err, tycheerr.ErrInvalidMnemonic)

	// Typo gets a suggestion
	typo := strings.Replace(zeroPhrase, "about", "abuot", 1)
	_, err = DecodeMnemonic(typo)
	require.ErrorIs(t, err, tycheerr.ErrInvalidMnemonic)
	var te *tycheerr.TycheError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Suggestion, "word 12: 'abuot'")
}

func TestDetectTypos(t *testing.T) {
	t.Parallel()

	typos := DetectTypos("abandon abandn zzzzzzzz about")
	require.Len(t, typos, 2)

	assert.Equal(t, 1, typos[0].Index)
	assert.Equal(t, "abandon", typos[0].Suggestion)
	assert.Equal(t, 2, typos[1].Index)
	assert.Empty(t, typos[1].Suggestion)

	assert.Equal(t,
		"word 2: 'abandn' - did you mean 'abandon'?\nword 3: 'zzzzzzzz' is not a valid BIP39 word",
		FormatTypoSuggestions(typos),
	)
	assert.Empty(t, DetectTypos(zeroPhrase))
}

func TestIsValidWord(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidWord("zoo"))
	assert.True(t, IsValidWord("ZOO"))
	assert.False(t, IsValidWord("zooo"))
}
