package common

import (
	"errors"
	"testing"
)

func TestGuard(t *testing.T) {
	if err := Guard(nil, "tipping"); err != nil {
		t.Fatalf("nil view must not block: %v", err)
	}
	paused := PauseSet{"tipping": true}
	if err := Guard(paused, "tipping"); !errors.Is(err, ErrModulePaused) {
		t.Fatalf("expected paused error, got %v", err)
	}
	if err := Guard(paused, "other"); err != nil {
		t.Fatalf("unrelated module must pass: %v", err)
	}
	if err := Guard(paused, " "); err != nil {
		t.Fatalf("blank module must pass: %v", err)
	}
}
