package gpu

import (
	"os/exec"
	"testing"

	"github.com/oisee/ipl3hasher/internal/hash"
)

func requireGPU(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath(BinaryPath); err != nil {
		t.Skipf("GPU companion binary not found at %s (build ipl3gpu and place it on PATH)", BinaryPath)
	}
}

func TestOrchestratorXRoundAgreesWithCPU(t *testing.T) {
	requireGPU(t)

	o, err := NewOrchestrator(0)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	defer o.Close()

	var p [hash.NumWords]uint32
	for i := range p {
		p[i] = uint32(i)*2654435761 + 0x9E3779B9
	}
	const seed = 0x3F
	sY := hash.YRound(&p, seed)

	target := hash.Verify(p, seed, 0x1234)
	result, err := o.XRound(target, sY, 0, p[1006], p[1005], 0x1234, 1, 1, 1)
	if err != nil {
		t.Fatalf("XRound: %v", err)
	}
	if result.Kind != Hit {
		t.Fatalf("XRound result kind = %v, want Hit", result.Kind)
	}
	if result.X != 0x1234 {
		t.Fatalf("XRound X = 0x%08X, want 0x1234", result.X)
	}
}

func TestOrchestratorRejectsOutOfBoundsAdapter(t *testing.T) {
	requireGPU(t)

	_, err := NewOrchestrator(9999)
	if err == nil {
		t.Fatal("NewOrchestrator(9999): want error, got nil")
	}
}
