package memory

import (
	"encoding/binary"

	"mcpx-apu/internal/debug"
)

// DirtyFunc is notified whenever the device writes guest memory, so an
// external watcher (display, snapshot) can observe the change.
type DirtyFunc func(start, length uint32)

// RAM is the guest physical memory the device borrows from the host
// machine. The device never owns this memory; every write notifies the
// dirty hook.
type RAM struct {
	data  []byte
	dirty DirtyFunc

	logger *debug.Logger
}

// NewRAM creates a guest RAM window of the given size in bytes
func NewRAM(size uint32, logger *debug.Logger) *RAM {
	return &RAM{
		data:   make([]byte, size),
		logger: logger,
	}
}

// Size returns the size of the RAM window in bytes
func (r *RAM) Size() uint32 {
	return uint32(len(r.data))
}

// SetDirtyFunc installs the dirty-range notification hook
func (r *RAM) SetDirtyFunc(fn DirtyFunc) {
	r.dirty = fn
}

// MarkDirty notifies the hook of a written range
func (r *RAM) MarkDirty(start, length uint32) {
	if r.dirty != nil {
		r.dirty(start, length)
	}
}

// Ldl reads a little-endian 32-bit word at a guest physical address.
// Reads outside the RAM window return 0 (open bus).
func (r *RAM) Ldl(phys uint32) uint32 {
	if uint64(phys)+4 > uint64(len(r.data)) {
		if r.logger != nil {
			r.logger.Logf(debug.ComponentDMA, debug.LogLevelWarning,
				"ldl outside RAM window: 0x%08X", phys)
		}
		return 0
	}
	return binary.LittleEndian.Uint32(r.data[phys:])
}

// Stl writes a little-endian 32-bit word at a guest physical address
// and marks it dirty. Writes outside the RAM window are dropped.
func (r *RAM) Stl(phys uint32, v uint32) {
	if uint64(phys)+4 > uint64(len(r.data)) {
		if r.logger != nil {
			r.logger.Logf(debug.ComponentDMA, debug.LogLevelWarning,
				"stl outside RAM window: 0x%08X", phys)
		}
		return
	}
	binary.LittleEndian.PutUint32(r.data[phys:], v)
	r.MarkDirty(phys, 4)
}

// Bytes exposes the backing buffer for bulk copies. DMA uses this
// directly; callers must mark written ranges dirty themselves.
func (r *RAM) Bytes() []byte {
	return r.data
}
