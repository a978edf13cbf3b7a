package gpu

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/oisee/ipl3hasher/internal/apperr"
	"github.com/oisee/ipl3hasher/internal/hash"
)

// request is the fixed-size little-endian payload sent for one x_round
// dispatch: the prefix state, the bookkeeping words the kernel needs to
// finish the last round and finalize, the target to compare against, and
// the workgroup-relative X window to sweep.
type request struct {
	SY         [hash.StateWords]uint32
	Y          uint32
	Data       uint32
	Prev       uint32
	TargetHi16 uint32
	TargetLo32 uint32
	XOffset    uint32
	WX         uint32
	WY         uint32
	WZ         uint32
}

func (r *request) write(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, r)
}

// responseCode is the found/continue/end discriminant in a dispatch reply.
type responseCode uint8

const (
	codeContinue responseCode = 0
	codeFound    responseCode = 1
	codeEnd      responseCode = 2
)

type response struct {
	Found responseCode
	Y     uint32
	X     uint32
}

func readResponse(r io.Reader) (response, error) {
	var resp response
	if err := binary.Read(r, binary.LittleEndian, &resp); err != nil {
		return response{}, fmt.Errorf("%w: read response: %v", apperr.ErrGPUHasher, err)
	}
	return resp, nil
}

// splitTarget decodes a 48-bit target checksum into the hi16/lo32 halves
// the wire protocol carries separately, matching how the reference GPU
// kernel compares against a 48-bit value using two 32-bit registers.
func splitTarget(target uint64) (hi16, lo32 uint32) {
	return uint32(target >> 32), uint32(target)
}
