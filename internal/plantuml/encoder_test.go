package plantuml

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samples = []string{
	"",
	"class Customer\nclass Order\nCustomer --> Order",
	"@startuml\nAlice -> Bob: Hello\n@enduml",
	"class Bücher <<Entität>>\nnote \"日本語 ✓\" as N",
	strings.Repeat("A -> B: spam\n", 200),
}

func TestTokenIsDeterministic(t *testing.T) {
	for _, s := range samples {
		assert.Equal(t, Token(s), Token(s))
	}
}

func TestTokenUsesURLSafeAlphabet(t *testing.T) {
	for _, s := range samples {
		token := Token(s)
		require.NotEmpty(t, token)
		assert.Zero(t, len(token)%4, "token length should be a multiple of 4")
		for _, r := range token {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q in token", r)
		}
		assert.Equal(t, token, url.PathEscape(token), "token must not need escaping")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	for _, s := range samples {
		got, err := Decode(Token(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestTokenMatchesPlantUMLServer(t *testing.T) {
	assert.Equal(t, "SyfFKj2rKt3CoKnELR1Io4ZDoSa70000", Token("Bob -> Alice : hello"))
}

func TestTokenMultiBlockRoundTrip(t *testing.T) {
	// Pseudo-random text large enough for compress/flate to emit several
	// blocks, so the single-block rewrite must not apply.
	var b strings.Builder
	seed := uint32(42)
	for b.Len() < 200_000 {
		seed = seed*1664525 + 1013904223
		b.WriteByte(alphabet[seed>>26])
	}
	markup := b.String()

	got, err := Decode(Token(markup))
	require.NoError(t, err)
	assert.Equal(t, markup, got)
}

func TestFinalizeSingleBlockRejectsOtherShapes(t *testing.T) {
	assert.Nil(t, finalizeSingleBlock(nil))
	assert.Nil(t, finalizeSingleBlock([]byte{0x73, 0x00}))
	assert.Nil(t, finalizeSingleBlock([]byte{0x00, 0x00, 0x00, 0xff, 0xff}))
}

func TestDistinctMarkupDistinctTokens(t *testing.T) {
	assert.NotEqual(t, Token("class A"), Token("class B"))
}

func TestEncodeBuildsURL(t *testing.T) {
	enc := NewEncoder("")
	got := enc.Encode("class Customer\nclass Order\nCustomer --> Order")

	assert.NotEmpty(t, got.Token)
	assert.True(t, strings.HasPrefix(got.URL, DefaultBaseURL))
	assert.Equal(t, DefaultBaseURL+got.Token, got.URL)

	custom := NewEncoder("http://localhost:8081/svg/")
	assert.Equal(t, "http://localhost:8081/svg/"+got.Token, custom.Encode("class Customer\nclass Order\nCustomer --> Order").URL)
}

func TestDecodeKnownToken(t *testing.T) {
	// Token produced by the PlantUML server for "Bob -> Alice : hello".
	got, err := Decode("SyfFKj2rKt3CoKnELR1Io4ZDoSa70000")
	require.NoError(t, err)
	assert.Equal(t, "Bob -> Alice : hello", got)

	got, err = Decode("~1" + Token("class A"))
	require.NoError(t, err)
	assert.Equal(t, "class A", got)
}

func TestDecodeInvalid(t *testing.T) {
	for _, token := range []string{"", "   ", "not a token!", "0000"} {
		_, err := Decode(token)
		assert.Error(t, err, "token %q", token)
	}
}
