package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// IncomeCSV is a small income distribution extract covering the regional
// aggregate and two Gran Canaria municipalities.
const IncomeCSV = `TIME_PERIOD_CODE,MEDIDAS#es,OBS_VALUE,TERRITORIO#es,TERRITORIO_CODE
2022,Pensiones,20.0,Canarias,ES70
2023,Pensiones,21.0,Canarias,ES70
2022,Sueldos y salarios,61.0,Canarias,ES70
2023,Sueldos y salarios,NA,Canarias,ES70
2023,Pensiones,42.5,Telde,35026_2023
2023,Sueldos y salarios,50.0,Telde,35026_2023
2023,Pensiones,30.0,Agüimes,35002_2023
2023,Otros ingresos,NA,Agüimes,35002_2023
`

// CatalogCSV maps municipalities to islands.
const CatalogCSV = `ISLA;NOMBRE
Gran Canaria;Telde
Gran Canaria;Agüimes
Tenerife;Arona
`

// BoundariesGeoJSON holds two municipal polygons.
const BoundariesGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"codigo": 35026, "nombre": "Telde"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[2,0],[2,1],[0,1],[0,0]]]}},
    {"type": "Feature", "properties": {"codigo": "35002", "nombre": "Agüimes"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,2],[1,2],[1,3],[0,2]]]}}
  ]
}`

// WriteDataRepo lays out a data repository under a fresh temp directory and
// returns its root. The data files live under data/.
func WriteDataRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	WriteDataFiles(t, root)
	return root
}

// WriteDataFiles writes the three data files under root/data.
func WriteDataFiles(t *testing.T, root string) {
	t.Helper()
	WriteFiles(t, root, map[string]string{
		"data/codislas.csv":                    CatalogCSV,
		"data/distribucion-renta-canarias.csv": IncomeCSV,
		"data/municipios.geojson":              BoundariesGeoJSON,
	})
}

// WriteFiles writes each name/content pair relative to root.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}
