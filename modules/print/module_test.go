package print_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/specialistvlad/incomegrid/internal/app"
	"github.com/specialistvlad/incomegrid/internal/testutil"
	"github.com/specialistvlad/incomegrid/modules/print"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_ManifestParity(t *testing.T) {
	t.Parallel()
	testutil.RequireManifestParity(t, &print.Module{})
}

func TestPrint_SortedListing(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
locals {
  year = 2023
}

step "print" "summary" {
  arguments {
    input = {
      zeta  = "last"
      alpha = "first"
      year  = local.year
    }
  }
}
`
	var out bytes.Buffer
	mod := &print.Module{Out: &out}

	// --- Act ---
	result := testutil.RunGrid(context.Background(), t, grid, app.Config{}, mod)

	// --- Assert ---
	require.NoError(t, result.Err, result.LogOutput)
	assert.Equal(t, "      alpha = \"first\"\n      year = \"2023\"\n      zeta = \"last\"\n", out.String())
}
