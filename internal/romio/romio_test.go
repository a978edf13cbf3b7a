package romio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func makeROM(t *testing.T, size int) string {
	t.Helper()
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(i)
	}
	path := filepath.Join(t.TempDir(), "rom.z64")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadDecodesBigEndianAtOffset64(t *testing.T) {
	path := makeROM(t, ipl3Offset+ipl3Len+64)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := binary.BigEndian.Uint32([]byte{
		byte(ipl3Offset), byte(ipl3Offset + 1), byte(ipl3Offset + 2), byte(ipl3Offset + 3),
	})
	if p[0] != want {
		t.Fatalf("p[0] = 0x%08X, want 0x%08X", p[0], want)
	}
}

func TestLoadRejectsShortFile(t *testing.T) {
	path := makeROM(t, ipl3Offset+10)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: want error on truncated ROM, got nil")
	}
}

func TestSignWritesBitsAndX(t *testing.T) {
	path := makeROM(t, ipl3Offset+ipl3Len+64)

	bits := []uint32{ipl3Offset*8 + 0, ipl3Offset*8 + 1, ipl3Offset*8 + 2}
	if err := Sign(path, bits, 0b101, 0xDEADBEEF); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	got := raw[ipl3Offset] & 0b111
	if got != 0b101 {
		t.Fatalf("signed byte low 3 bits = 0b%b, want 0b101", got)
	}

	gotX := binary.BigEndian.Uint32(raw[4092:4096])
	if gotX != 0xDEADBEEF {
		t.Fatalf("signed X = 0x%08X, want 0xDEADBEEF", gotX)
	}
}

func TestSignClearsUnsetBits(t *testing.T) {
	path := makeROM(t, ipl3Offset+ipl3Len+64)

	// Pre-set the target byte to all-ones, then sign y=0 so bit 0 must clear.
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.WriteAt([]byte{0xFF}, ipl3Offset); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	f.Close()

	if err := Sign(path, []uint32{ipl3Offset * 8}, 0, 0); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if raw[ipl3Offset]&1 != 0 {
		t.Fatalf("bit 0 of signed byte = 1, want 0")
	}
	if raw[ipl3Offset]&0xFE != 0xFE {
		t.Fatalf("other bits of signed byte were disturbed: got 0x%02X", raw[ipl3Offset])
	}
}
