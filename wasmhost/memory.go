package wasmhost

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"

	glidebridge "github.com/wippyai/glide-bridge"
)

var (
	_ glidebridge.Memory      = (*guestMemory)(nil)
	_ glidebridge.MemorySizer = (*guestMemory)(nil)
)

// guestMemory wraps wazero memory to implement glidebridge.Memory.
type guestMemory struct {
	mem api.Memory
}

func memoryOf(mod api.Module) (*guestMemory, error) {
	mem := mod.Memory()
	if mem == nil {
		return nil, fmt.Errorf("module %q exports no memory", mod.Name())
	}
	return &guestMemory{mem: mem}, nil
}

func (m *guestMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *guestMemory) Write(offset uint32, data []byte) error {
	ok := m.mem.Write(offset, data)
	if !ok {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *guestMemory) Size() uint32 {
	return m.mem.Size()
}

// readString copies a guest string. A zero pointer and length is null.
func readString(mem glidebridge.Memory, ptr, length uint32) (any, error) {
	if ptr == 0 && length == 0 {
		return nil, nil
	}
	data, err := mem.Read(ptr, length)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
