package shader

import (
	"strings"
	"testing"
)

func TestSourceEmbedded(t *testing.T) {
	if len(Source) == 0 {
		t.Fatal("Source is empty")
	}
	if !strings.Contains(Source, "void main()") {
		t.Fatal("Source missing entry point")
	}
}
