package app

import (
	"io"

	"github.com/specialistvlad/incomegrid/internal/registry"
	"github.com/specialistvlad/incomegrid/modules/charts"
	"github.com/specialistvlad/incomegrid/modules/csvtable"
	"github.com/specialistvlad/incomegrid/modules/geojson"
	"github.com/specialistvlad/incomegrid/modules/git"
	"github.com/specialistvlad/incomegrid/modules/print"
)

// CoreModules returns the modules compiled into the binary. The print
// runner writes to out.
func CoreModules(out io.Writer) []registry.Module {
	return []registry.Module{
		&git.Module{},
		&csvtable.Module{},
		&geojson.Module{},
		&charts.Module{},
		&print.Module{Out: out},
	}
}
