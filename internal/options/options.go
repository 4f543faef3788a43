// Package options contains the program options.
package options

import (
	"errors"
	"fmt"

	"github.com/retroenv/gbdisasm/internal/address"
	"gopkg.in/yaml.v3"
)

// DefaultOutputDir is the output directory used when none is configured.
const DefaultOutputDir = "outdir"

// Program options of the disassembler.
type Program struct {
	Config    string // YAML project file
	ROM       string
	Sym       string
	Shim      string
	Charmap   string
	OutputDir string
	Overwrite bool

	Debug bool
	Quiet bool
}

// Disassembler defines options to control the disassembler.
type Disassembler struct {
	Routines Locations
	Texts    Locations
	Tables   Locations
	Data     Locations
	EOS      []Terminator

	HomeReferenceBank *int // nil selects the bank based on the ROM size
	AssumePointer     bool
	MinDataPointer    int
	MaxDataPointer    *int // nil means the ROM size
	MaxGeneration     int

	RAMOffsetNaming    bool
	PersistOffsetNames bool
	HardwareNames      bool

	HexComments    bool
	OffsetComments bool
}

// NewDisassembler returns a new options instance with default options.
func NewDisassembler() Disassembler {
	return Disassembler{}
}

// LocationKind defines how a location was specified.
type LocationKind uint8

const (
	GlobalLocation LocationKind = iota
	BankLocation
	NamedLocation
)

var errInvalidLocation = errors.New("invalid location")

// Location is an entry point given by the configuration.
type Location struct {
	Kind    LocationKind
	Bank    int
	Address int // global offset for GlobalLocation, CPU address for BankLocation
	Name    string
}

// UnmarshalYAML decodes a location given as [bank, address] pair, as integer
// global offset, as "BB:AAAA" string or as symbol name.
func (l *Location) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var pair []int
		if err := node.Decode(&pair); err != nil {
			return fmt.Errorf("decoding bank address pair: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("%w: expected [bank, address] at line %d", errInvalidLocation, node.Line)
		}
		*l = Location{Kind: BankLocation, Bank: pair[0], Address: pair[1]}
		return nil

	case yaml.ScalarNode:
		var offset int
		if node.Tag == "!!int" {
			if err := node.Decode(&offset); err != nil {
				return fmt.Errorf("decoding global offset: %w", err)
			}
			*l = Location{Kind: GlobalLocation, Address: offset}
			return nil
		}

		if addr, err := address.Parse(node.Value); err == nil {
			if addr.Space == address.RAM {
				return fmt.Errorf("%w: '%s' is not a ROM address", errInvalidLocation, node.Value)
			}
			*l = Location{Kind: GlobalLocation, Address: addr.Offset}
			return nil
		}
		*l = Location{Kind: NamedLocation, Name: node.Value}
		return nil

	default:
		return fmt.Errorf("%w: unsupported value at line %d", errInvalidLocation, node.Line)
	}
}

// Resolve returns the global offset of the location. Names are resolved using
// the lookup function.
func (l Location) Resolve(lookup func(name string) (int, bool)) (int, error) {
	switch l.Kind {
	case BankLocation:
		if !visible(l.Bank, l.Address) {
			return 0, fmt.Errorf("%w: address %04x is not visible in bank %d", errInvalidLocation, l.Address, l.Bank)
		}
		return address.ToGlobal(l.Bank, l.Address), nil

	case NamedLocation:
		offset, ok := lookup(l.Name)
		if !ok {
			return 0, fmt.Errorf("%w: unknown symbol '%s'", errInvalidLocation, l.Name)
		}
		return offset, nil

	default:
		return l.Address, nil
	}
}

// visible returns whether the CPU address is mapped while the bank is selected.
func visible(bank, addr int) bool {
	if bank == 0 {
		return addr >= 0 && addr < address.WindowStart
	}
	return bank > 0 && addr >= address.WindowStart && addr < address.RAMStart
}

func (l Location) String() string {
	switch l.Kind {
	case BankLocation:
		return fmt.Sprintf("%02x:%04x", l.Bank, l.Address)
	case NamedLocation:
		return l.Name
	default:
		return address.InROM(l.Address).String()
	}
}

// Locations is a list of locations that can also be given as a single
// location or as a single [bank, address] pair.
type Locations []Location

// UnmarshalYAML decodes a list of locations. A list of two integers that form
// a visible bank address pair is a single location.
func (l *Locations) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		var single Location
		if err := single.UnmarshalYAML(node); err != nil {
			return err
		}
		*l = Locations{single}
		return nil
	}

	if pair, ok := bankPair(node); ok {
		*l = Locations{pair}
		return nil
	}

	var list []Location
	if err := node.Decode(&list); err != nil {
		return err //nolint:wrapcheck // decoded by own type
	}
	*l = list
	return nil
}

func bankPair(node *yaml.Node) (Location, bool) {
	if len(node.Content) != 2 {
		return Location{}, false
	}
	var pair [2]int
	for i, item := range node.Content {
		if item.Kind != yaml.ScalarNode || item.Tag != "!!int" {
			return Location{}, false
		}
		if err := item.Decode(&pair[i]); err != nil {
			return Location{}, false
		}
	}
	if !visible(pair[0], pair[1]) {
		return Location{}, false
	}
	return Location{Kind: BankLocation, Bank: pair[0], Address: pair[1]}, true
}

// Terminator is a byte that ends a text, given either as value or as mapped character.
type Terminator struct {
	Value int
	Char  string
}

// UnmarshalYAML decodes a terminator given as integer or as character.
func (t *Terminator) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: text terminator at line %d", errInvalidLocation, node.Line)
	}
	if node.Tag == "!!int" {
		var value int
		if err := node.Decode(&value); err != nil {
			return fmt.Errorf("decoding text terminator: %w", err)
		}
		if value < 0 || value > 0xff {
			return fmt.Errorf("text terminator %d is not a byte", value)
		}
		*t = Terminator{Value: value}
		return nil
	}
	*t = Terminator{Char: node.Value}
	return nil
}

// Terminators is a list of text terminators that can also be given as single value.
type Terminators []Terminator

// UnmarshalYAML decodes a single terminator or a list of terminators.
func (t *Terminators) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var list []Terminator
		if err := node.Decode(&list); err != nil {
			return err //nolint:wrapcheck // decoded by own type
		}
		*t = list
		return nil
	}

	var single Terminator
	if err := single.UnmarshalYAML(node); err != nil {
		return err
	}
	*t = Terminators{single}
	return nil
}
