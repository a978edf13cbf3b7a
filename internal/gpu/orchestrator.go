// Package gpu drives the external GPU compute companion binary (ipl3gpu)
// that performs the X-dependent tail of the IPL3 hash in parallel.
package gpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/oisee/ipl3hasher/internal/apperr"
	"github.com/oisee/ipl3hasher/internal/hash"
)

// BinaryPath is the path to the ipl3gpu companion binary. Override it
// before calling NewOrchestrator if the binary is elsewhere (mirrors the
// teacher's package-level CUDABinaryPath).
var BinaryPath = "ipl3gpu"

// Result is the outcome of one x_round dispatch.
type Result struct {
	Kind ResultKind
	Y    uint32
	X    uint32
	Step uint32
}

// ResultKind discriminates the three possible Result shapes.
type ResultKind int

const (
	Continue ResultKind = iota
	Hit
	End
)

// Orchestrator owns a long-lived "ipl3gpu --server" child process: the
// compiled shader pipeline and device bindings are set up once at startup
// and reused across every dispatch for the orchestrator's lifetime.
type Orchestrator struct {
	cmd          *exec.Cmd
	stdin        io.WriteCloser
	stdout       *bufio.Reader
	stdoutCloser io.Closer
	mu           sync.Mutex
}

// NewOrchestrator starts the companion process at BinaryPath pinned to the
// given GPU adapter index. It returns
// ErrGPUAdapterOutOfBounds if the companion reports the index doesn't
// exist, and wraps any process/pipe failure in ErrGPUHasher.
func NewOrchestrator(adapterIndex int) (*Orchestrator, error) {
	cmd := exec.Command(BinaryPath, "--server")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", apperr.ErrGPUHasher, err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("%w: stdout pipe: %v", apperr.ErrGPUHasher, err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("%w: start %s: %v", apperr.ErrGPUHasher, BinaryPath, err)
	}

	o := &Orchestrator{
		cmd:          cmd,
		stdin:        stdin,
		stdout:       bufio.NewReader(stdoutPipe),
		stdoutCloser: stdoutPipe,
	}

	if err := binary.Write(o.stdin, binary.LittleEndian, uint32(adapterIndex)); err != nil {
		o.Close()
		return nil, fmt.Errorf("%w: write adapter index: %v", apperr.ErrGPUHasher, err)
	}

	var ok uint8
	if err := binary.Read(o.stdout, binary.LittleEndian, &ok); err != nil {
		o.Close()
		return nil, fmt.Errorf("%w: read adapter ack: %v", apperr.ErrGPUHasher, err)
	}
	if ok == 0 {
		o.Close()
		return nil, apperr.ErrGPUAdapterOutOfBounds
	}

	return o, nil
}

// XRound dispatches one sweep of X starting at xOffset, fusing the
// X-dependent tail of the hash onto the CPU-computed prefix state sY and
// finalizing, for workgroups.X*workgroups.Y*workgroups.Z*256 candidates.
// data and prev are P[1006] and P[1005] (the words YRound has already
// partially folded into sY), carried alongside sY because the kernel needs
// data again to complete s[14]/s[15]'s X-dependent terms (see
// hash.KernelTail).
func (o *Orchestrator) XRound(target uint64, sY hash.State, y, data, prev, xOffset uint32, wx, wy, wz uint32) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	hi16, lo32 := splitTarget(target)
	req := request{
		SY:         sY,
		Y:          y,
		Data:       data,
		Prev:       prev,
		TargetHi16: hi16,
		TargetLo32: lo32,
		XOffset:    xOffset,
		WX:         wx,
		WY:         wy,
		WZ:         wz,
	}
	if err := req.write(o.stdin); err != nil {
		return Result{}, fmt.Errorf("%w: write request: %v", apperr.ErrGPUHasher, err)
	}

	resp, err := readResponse(o.stdout)
	if err != nil {
		return Result{}, err
	}

	step := uint64(wx) * uint64(wy) * uint64(wz) * 256

	switch resp.Found {
	case codeFound:
		return Result{Kind: Hit, Y: resp.Y, X: resp.X}, nil
	case codeEnd:
		return Result{Kind: End}, nil
	default:
		// This dispatch covered [xOffset, xOffset+step); once that reaches
		// 2^32 the whole X space has been swept.
		if uint64(xOffset)+step >= 1<<32 {
			return Result{Kind: End}, nil
		}
		return Result{Kind: Continue, Step: uint32(step)}, nil
	}
}

// Close shuts down the companion process.
func (o *Orchestrator) Close() error {
	o.stdin.Close()
	return o.cmd.Wait()
}
