package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zalepa/commutemap/boundary"
	"github.com/zalepa/commutemap/census"
	"github.com/zalepa/commutemap/dataset"
)

const boundariesJSON = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"comm_code":"ABB","name":"ABBEYDALE"},
 "geometry":{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[1,0],[0,0]]]}},
{"type":"Feature","properties":{"comm_code":"BNF","name":"BANFF TRAIL"},
 "geometry":{"type":"Polygon","coordinates":[[[1,0],[1,1],[2,1],[2,0],[1,0]]]}},
{"type":"Feature","properties":{"comm_code":"01B","name":"Nowhere Area"},
 "geometry":{"type":"Polygon","coordinates":[[[2,0],[2,1],[3,1],[3,0],[2,0]]]}}
]}`

const travelCSV = `comm_code,name,drovealone,transit,bicycle,walk
ABB,Abbeydale,"1,200",300,25,10
BNF,Banff Trail,400,500,75,200
ZZZ,NOWHERE,1,0,0,0
`

// testDataset joins the fixtures in memory.
func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	col, err := boundary.DecodeGeoJSON(strings.NewReader(boundariesJSON))
	require.NoError(t, err)
	rows, err := census.ReadCSV(strings.NewReader(travelCSV))
	require.NoError(t, err)
	d, err := dataset.Build(col, rows, dataset.Options{})
	require.NoError(t, err)
	return d
}

// writeFixtures writes the fixtures into a temp dir and returns their paths.
func writeFixtures(t *testing.T) (dir, geo, csv string) {
	t.Helper()
	dir = t.TempDir()
	geo = filepath.Join(dir, "boundaries.geojson")
	csv = filepath.Join(dir, "travel.csv")
	require.NoError(t, os.WriteFile(geo, []byte(boundariesJSON), 0o644))
	require.NoError(t, os.WriteFile(csv, []byte(travelCSV), 0o644))
	return dir, geo, csv
}

// runCLI executes the root command with args and returns its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
