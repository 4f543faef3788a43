package symbols

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
)

// Symbol is a name bound to an address, as listed in a symbol file.
type Symbol struct {
	Address address.Address
	Name    string
}

func (s Symbol) String() string {
	return s.Address.String() + " " + s.Name
}

// ParseSym parses a symbol file with one "BB:AAAA name" binding per line.
// Lines that do not start with an address are ignored.
func ParseSym(reader io.Reader) ([]Symbol, error) {
	var symbols []Symbol

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), ";")
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		addr, err := address.Parse(fields[0])
		if err != nil {
			continue
		}
		symbols = append(symbols, Symbol{Address: addr, Name: fields[1]})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading symbol file: %w", err)
	}
	return symbols, nil
}
