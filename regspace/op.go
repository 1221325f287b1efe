package regspace

import (
	"fmt"
	"strings"
)

// Op identifies the kind of a register access.
type Op int

// The register access kinds recorded in the journal.
const (
	OpRead8 Op = iota
	OpRead16
	OpRead32
	OpReadPtr
	OpWrite8
	OpWrite16
	OpWrite32
	OpWritePtr
)

var opNames = [...]string{
	OpRead8:    "READ8",
	OpRead16:   "READ16",
	OpRead32:   "READ32",
	OpReadPtr:  "READPTR",
	OpWrite8:   "WRITE8",
	OpWrite16:  "WRITE16",
	OpWrite32:  "WRITE32",
	OpWritePtr: "WRITEPTR",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(o))
	}

	return opNames[o]
}

// IsWrite reports whether the op modifies the register space.
func (o Op) IsWrite() bool {
	return o >= OpWrite8 && o <= OpWritePtr
}

// ParseOp converts the name printed by Op.String back to an Op.
func ParseOp(name string) (Op, error) {
	for i, n := range opNames {
		if strings.EqualFold(n, name) {
			return Op(i), nil
		}
	}

	return 0, fmt.Errorf("unknown register op %q", name)
}

// A JournalEntry records one access. Value is the value returned by a read
// or the value actually stored by a write. Pointer accesses record 1 for a
// non-nil slot and 0 otherwise.
type JournalEntry struct {
	Op    Op
	Addr  uint32
	Value uint32
}

func (e JournalEntry) String() string {
	return fmt.Sprintf("(%s, 0x%08x, 0x%x)", e.Op, e.Addr, e.Value)
}
