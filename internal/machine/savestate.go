package machine

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"mcpx-apu/internal/apu"
)

// SaveStateVersion guards against loading snapshots from an
// incompatible build. The format itself is not a stability contract.
const SaveStateVersion uint16 = 1

// SaveState is a complete machine snapshot
type SaveState struct {
	Version uint16

	APU apu.State
	RAM []byte
}

// Save writes a snapshot of the machine to w
func (m *Machine) Save(w io.Writer) error {
	m.mu.Lock()
	state := SaveState{
		Version: SaveStateVersion,
		APU:     m.APU.Snapshot(),
		RAM:     append([]byte(nil), m.RAM.Bytes()...),
	}
	m.mu.Unlock()

	if err := gob.NewEncoder(w).Encode(&state); err != nil {
		return fmt.Errorf("failed to encode save state: %w", err)
	}
	return nil
}

// Load restores a snapshot from r
func (m *Machine) Load(r io.Reader) error {
	var state SaveState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("failed to decode save state: %w", err)
	}
	if state.Version != SaveStateVersion {
		return fmt.Errorf("save state version %d not supported", state.Version)
	}
	if uint32(len(state.RAM)) != m.RAM.Size() {
		return fmt.Errorf("save state RAM size %d does not match machine RAM %d",
			len(state.RAM), m.RAM.Size())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copy(m.RAM.Bytes(), state.RAM)
	return m.APU.Restore(state.APU)
}

// SaveToFile writes a snapshot to the named file
func (m *Machine) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create save state file: %w", err)
	}
	defer f.Close()
	return m.Save(f)
}

// LoadFromFile restores a snapshot from the named file
func (m *Machine) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open save state file: %w", err)
	}
	defer f.Close()
	return m.Load(f)
}
