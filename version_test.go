/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package unitofwork_test

import (
	"strings"
	"testing"

	"github.com/suparena/unitofwork"
)

func TestVersionInfo(t *testing.T) {
	info := unitofwork.GetVersionInfo()
	if info.Version != unitofwork.Version {
		t.Errorf("Expected version %q, got %q", unitofwork.Version, info.Version)
	}
	if s := info.String(); !strings.HasPrefix(s, "uowctl version "+unitofwork.Version) || !strings.Contains(s, "Git commit: ") {
		t.Errorf("unexpected version block %q", s)
	}
}
