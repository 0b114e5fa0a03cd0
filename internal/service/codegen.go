package service

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// Clock supplies UTC timestamps; injectable for tests.
type Clock func() time.Time

// UTCNow is the production clock.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// CodeGenerator issues candidate ticket codes. Collisions are expected to be
// rare and are treated as retryable by the sale processor.
type CodeGenerator interface {
	NewCode() (string, error)
}

// RandomCodeGenerator produces short high-entropy uppercase hex tokens.
type RandomCodeGenerator struct {
	Length int
}

// NewCode returns a token of the configured length.
func (g RandomCodeGenerator) NewCode() (string, error) {
	length := g.Length
	if length <= 0 {
		length = 8
	}
	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf))[:length], nil
}
