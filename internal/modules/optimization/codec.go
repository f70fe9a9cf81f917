package optimization

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotVersion guards against reading snapshots written by an incompatible layout
const snapshotVersion = 1

type snapshot struct {
	Version int      `msgpack:"v"`
	Program *Program `msgpack:"program"`
}

// EncodeProgram writes a lossless msgpack snapshot of the program
func EncodeProgram(w io.Writer, p *Program) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(snapshot{Version: snapshotVersion, Program: p}); err != nil {
		return fmt.Errorf("failed to encode program %s: %w", p.Name, err)
	}
	return nil
}

// DecodeProgram reads a snapshot written by EncodeProgram
func DecodeProgram(r io.Reader) (*Program, error) {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode program: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported program snapshot version %d", snap.Version)
	}
	if snap.Program == nil {
		return nil, fmt.Errorf("program snapshot is empty")
	}
	if err := snap.Program.Validate(); err != nil {
		return nil, fmt.Errorf("decoded program is invalid: %w", err)
	}
	return snap.Program, nil
}
