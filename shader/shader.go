// Package shader reads pre-compiled SPIR-V blobs.
package shader

import (
	"encoding/binary"
	"io/fs"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/presentctx/gfx"
)

// Magic is the first word of every SPIR-V module.
const Magic uint32 = 0x07230203

// Loader reads whole shader files from a file system.
type Loader struct {
	FS fs.FS
}

var _ gfx.ShaderSource = (*Loader)(nil)

func NewLoader(fsys fs.FS) *Loader {
	return &Loader{FS: fsys}
}

// Load returns the named file's contents. Any failure to open or read it is
// reported as a *gfx.FileAccessError.
func (l *Loader) Load(name string) ([]byte, error) {
	b, err := fs.ReadFile(l.FS, name)
	if err != nil {
		return nil, &gfx.FileAccessError{Path: name, Err: err}
	}
	return b, nil
}

// Words reinterprets little-endian SPIR-V bytes as the 32-bit words a shader
// module is created from.
func Words(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, errors.Newf("shader bytecode length %d is not a multiple of 4", len(b))
	}

	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	if len(byteCode) > 0 && byteCode[0] != Magic {
		return nil, errors.Newf("shader bytecode starts with %#08x, not the SPIR-V magic number", byteCode[0])
	}

	return byteCode, nil
}
