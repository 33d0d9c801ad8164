package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gostat/adapters/excel"
	"gostat/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = "Country;City;Sales\nGermany;Berlin;10\nGermany;Munich;20\nFrance;Paris;5\n"

func writeSales(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(salesCSV), 0o644))
	return path
}

func TestParseWhere(t *testing.T) {
	spec, err := parseWhere([]string{"Country=Germany", "Country=France", "City=Bad Homburg", "Note="})
	require.NoError(t, err)

	assert.Equal(t, []string{"Germany", "France"}, spec["Country"])
	assert.Equal(t, []string{"Bad Homburg"}, spec["City"])
	assert.Equal(t, []string{""}, spec["Note"])

	_, err = parseWhere([]string{"Country"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	_, err = parseWhere([]string{"=x"})
	assert.Error(t, err)
}

func TestRunQuery(t *testing.T) {
	cfg := excel.DefaultReaderConfig()
	cfg.FilePath = writeSales(t)
	cfg.Delimiter = ';'

	var out bytes.Buffer
	spec, err := parseWhere([]string{"Country=Germany"})
	require.NoError(t, err)
	require.NoError(t, runQuery(context.Background(), &out, excel.NewDataReader(cfg), "Sales", spec))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Equal(t, 2.0, body["entries"])
	assert.Equal(t, 15.0, body["avg"])
	assert.Equal(t, 50.0, body["var"])
}

func TestRunQuery_UnknownColumn(t *testing.T) {
	cfg := excel.DefaultReaderConfig()
	cfg.FilePath = writeSales(t)
	cfg.Delimiter = ';'

	spec, err := parseWhere([]string{"Region=North"})
	require.NoError(t, err)
	err = runQuery(context.Background(), &bytes.Buffer{}, excel.NewDataReader(cfg), "Sales", spec)
	assert.True(t, errors.IsUnknownColumn(err))
}

func TestQueryCommand(t *testing.T) {
	path := writeSales(t)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"query", "--file", path, "--delimiter", ";", "--target", "Sales", "--where", "City=Paris"})
	require.NoError(t, cmd.Execute())

	assert.JSONEq(t, `{"entries":1,"avg":5,"median":5,"var":null,"std":null}`, out.String())
}

func TestQueryCommand_ConfigFile(t *testing.T) {
	path := writeSales(t)
	configPath := filepath.Join(t.TempDir(), "gostat.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("file: "+path+"\ndelimiter: \";\"\ntarget: Sales\n"), 0o644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"query", "--config", configPath})
	require.NoError(t, cmd.Execute())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Equal(t, 3.0, body["entries"])
}

func TestSchemaCommand(t *testing.T) {
	path := writeSales(t)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"schema", "--file", path, "--delimiter", ";"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), `"name": "Sales"`)
	assert.Contains(t, out.String(), `"type": "numeric"`)
}

func TestRunQuery_TargetNotNumeric(t *testing.T) {
	cfg := excel.DefaultReaderConfig()
	cfg.FilePath = writeSales(t)
	cfg.Delimiter = ';'

	err := runQuery(context.Background(), &bytes.Buffer{}, excel.NewDataReader(cfg), "Country", nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "not numeric")
}

func TestQueryCommand_MissingFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"query", "--target", "Sales"})

	err := cmd.Execute()
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
