package symbols

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/log"
)

var charmapLine = regexp.MustCompile(`(?i)^\s*charmap\s*"((?:[^"\\]|\\.)*)"\s*,\s*(\S+)\s*$`)

// Charmap maps bytes to the characters used for decoding text.
type Charmap struct {
	ByteToChar map[byte]string
	CharToByte map[string]byte
}

// NewCharmap returns an empty character map.
func NewCharmap() *Charmap {
	return &Charmap{
		ByteToChar: map[byte]string{},
		CharToByte: map[string]byte{},
	}
}

// ParseCharmap parses charmap "chars", value directives. The first
// character bound to a byte wins, later ones are reported and ignored.
func ParseCharmap(logger *log.Logger, reader io.Reader) (*Charmap, error) {
	charmap := NewCharmap()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), ";")
		match := charmapLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		chars, literal := match[1], match[2]
		value, err := parseValue(literal)
		if err != nil || value > 0xff {
			logger.Warn("Invalid charmap value", log.String("value", literal), log.String("chars", chars))
			continue
		}
		b := byte(value)

		if existing, ok := charmap.ByteToChar[b]; ok {
			logger.Warn("Characters share the same byte",
				log.String("chars", existing), log.String("ignored", chars), log.Hex("value", b))
			continue
		}
		charmap.ByteToChar[b] = chars
		if _, ok := charmap.CharToByte[chars]; !ok {
			charmap.CharToByte[chars] = b
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading charmap file: %w", err)
	}
	return charmap, nil
}

func parseValue(s string) (uint64, error) {
	if hex, ok := strings.CutPrefix(s, "$"); ok {
		return strconv.ParseUint(hex, 16, 16) //nolint:wrapcheck // caller reports the literal
	}
	return strconv.ParseUint(s, 10, 16) //nolint:wrapcheck // caller reports the literal
}
