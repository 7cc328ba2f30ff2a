//go:build !fyne

package cli

import (
	"strings"
	"testing"
)

func TestUIStub(t *testing.T) {
	_, err := newEnv(t).run("ui")
	if err == nil || !strings.Contains(err.Error(), "UI not built") {
		t.Fatalf("err = %v", err)
	}
}
