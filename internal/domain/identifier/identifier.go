// Package identifier generates session-scoped record identifiers.
package identifier

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefix starts every generated identifier.
const Prefix = "pdl_"

const suffixLen = 9

var now = time.Now

// New returns pdl_<unix-millis>_<9 lowercase alphanumerics>.
// Identifiers are unique enough within one process; never use them as persistence keys.
func New() string {
	return Prefix + strconv.FormatInt(now().UnixMilli(), 10) + "_" + suffix()
}

// suffix draws base-36 characters from a random UUID,
// skipping the bytes that carry the version and variant bits.
func suffix() string {
	id := uuid.New()
	var b strings.Builder
	b.Grow(suffixLen)
	for i := 0; b.Len() < suffixLen && i < len(id); i++ {
		if i == versionByte || i == variantByte {
			continue
		}
		b.WriteByte(alphabet[int(id[i])%len(alphabet)])
	}
	return b.String()
}

const (
	versionByte = 6
	variantByte = 8
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
