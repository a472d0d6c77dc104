package insertrecords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "depots.yaml"), []byte(`Collection: stops
Match:
  primaryidentifier: depot-north
Data:
  primaryname: North Depot
  active: false
---
Collection: routes
Match:
  primaryidentifier: depot-shuttle
Data:
  name: Depot Shuttle
`), 0o644)
	require.Nil(t, err)

	definitions, err := Load(dir)
	require.Nil(t, err)
	require.Len(t, definitions, 2)

	assert.Equal(t, "stops", definitions[0].Collection)
	assert.Equal(t, bson.M{"primaryidentifier": "depot-north"}, definitions[0].filter())
	assert.Equal(t, "North Depot", definitions[0].Data["primaryname"])
	assert.Equal(t, false, definitions[0].Data["active"])
	assert.Equal(t, "routes", definitions[1].Collection)
}

func TestLoadRejectsMissingMatch(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("Collection: stops\nData:\n  active: true\n"), 0o644)
	require.Nil(t, err)

	_, err = Load(dir)
	assert.NotNil(t, err)
}
