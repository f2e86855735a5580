package plantuml

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"fmt"
	"io"
	"math/bits"
	"strings"
)

// DefaultBaseURL is the public PlantUML server's SVG endpoint.
const DefaultBaseURL = "https://www.plantuml.com/plantuml/svg/"

// alphabet is PlantUML's base64 variant: same bit layout as RFC 4648, but
// with digits first and only URL-unreserved characters.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

var encoding = base64.NewEncoding(alphabet).WithPadding(base64.NoPadding)

// Encoded is diagram markup in the form the rendering server addresses.
type Encoded struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// Encoder turns markup into rendering server URLs.
type Encoder struct {
	baseURL string
}

// NewEncoder returns an encoder producing URLs under baseURL. An empty
// baseURL selects DefaultBaseURL.
func NewEncoder(baseURL string) *Encoder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Encoder{baseURL: baseURL}
}

// BaseURL returns the configured rendering server prefix.
func (e *Encoder) BaseURL() string {
	return e.baseURL
}

// Encode computes the token and resource URL for markup. The result depends
// only on markup and the base URL.
func (e *Encoder) Encode(markup string) Encoded {
	token := Token(markup)
	return Encoded{Token: token, URL: e.baseURL + token}
}

// Token compresses markup with raw DEFLATE and encodes it with the PlantUML
// alphabet. Any string is accepted, including the empty string. Tokens for
// markup that fits in one DEFLATE block are byte-identical to the PlantUML
// server's own.
func Token(markup string) string {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		panic(fmt.Sprintf("plantuml: creating deflate writer: %v", err))
	}
	if _, err := io.WriteString(w, markup); err != nil {
		panic(fmt.Sprintf("plantuml: compressing markup: %v", err))
	}
	if err := w.Close(); err != nil {
		panic(fmt.Sprintf("plantuml: flushing deflate writer: %v", err))
	}

	data := buf.Bytes()
	if single := finalizeSingleBlock(data); single != nil && inflatesTo(single, markup) {
		data = single
	}

	// PlantUML encodes whole 3-byte groups, zero-filling the last one.
	if rem := len(data) % 3; rem != 0 {
		data = append(data, make([]byte, 3-rem)...)
	}
	return encoding.EncodeToString(data)
}

// emptyStoredTail is the LEN/NLEN pair of the empty stored block that
// compress/flate appends on Close.
var emptyStoredTail = []byte{0x00, 0x00, 0xff, 0xff}

// finalizeSingleBlock rewrites a compress/flate stream into the form zlib
// produces: BFINAL set on the first block and the empty final stored block
// removed. The last set bit before the LEN/NLEN pair is that stored
// block's BFINAL bit, since its BTYPE and padding bits are zero. It returns
// nil when data does not have that shape. The result is only correct when
// the stream held a single data block, which callers must verify.
func finalizeSingleBlock(data []byte) []byte {
	if !bytes.HasSuffix(data, emptyStoredTail) {
		return nil
	}
	body := data[:len(data)-len(emptyStoredTail)]

	i := len(body) - 1
	for i >= 0 && body[i] == 0 {
		i--
	}
	if i < 0 {
		return nil
	}
	end := i*8 + bits.Len8(body[i]) - 1
	n := (end + 7) / 8
	if n == 0 {
		return nil
	}

	out := make([]byte, n)
	copy(out, body[:n])
	if r := end % 8; r != 0 {
		out[n-1] &= byte(1)<<r - 1
	}
	out[0] |= 1
	return out
}

func inflatesTo(data []byte, markup string) bool {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	return err == nil && string(out) == markup
}

// Decode reverses Token. Tokens carrying the "~1" prefix used by some
// PlantUML clients are accepted.
func Decode(token string) (string, error) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "~1")
	if token == "" {
		return "", fmt.Errorf("empty token")
	}

	data, err := encoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("decoding token: %w", err)
	}

	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("inflating token: %w", err)
	}
	return string(out), nil
}
