// SPDX-License-Identifier: MIT

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/varcomp/core"
)

// Supported --format values.
const (
	formatYAML = "yaml"
	formatJSON = "json"
	formatTOML = "toml"
)

// dataFile is the on-disk observation set: theta[i] is θᵢ, s[i] is Sᵢ.
type dataFile struct {
	Theta [][]float64   `yaml:"theta" json:"theta" toml:"theta"`
	S     [][][]float64 `yaml:"s" json:"s" toml:"s"`
}

// formatFromPath picks the codec from the file extension; YAML otherwise.
func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON
	case ".toml":
		return formatTOML
	default:
		return formatYAML
	}
}

func decode(data []byte, format string, out any) error {
	switch format {
	case formatJSON:
		return json.Unmarshal(data, out)
	case formatTOML:
		return toml.Unmarshal(data, out)
	case formatYAML:
		return yaml.Unmarshal(data, out)
	default:
		return errors.Newf("unsupported format %q (supported: yaml, json, toml)", format)
	}
}

func encode(w io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case formatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	case formatTOML:
		data, err = toml.Marshal(v)
	case formatYAML:
		data, err = yaml.Marshal(v)
	default:
		return errors.Newf("unsupported format %q (supported: yaml, json, toml)", format)
	}
	if err != nil {
		return errors.Wrapf(err, "encode %s", format)
	}
	_, err = w.Write(data)

	return err
}

// readDataset loads and validates an observation file.
func readDataset(path string) (*core.ObservationSet, error) {
	if path == "" {
		return nil, errors.New("--input is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var df dataFile
	if err = decode(raw, formatFromPath(path), &df); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	obs, err := core.FromSlices(df.Theta, df.S)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}

	return obs, nil
}

// writeOutput encodes v to path, or to w when path is empty.
func writeOutput(w io.Writer, path, format string, v any) error {
	if path == "" {
		return encode(w, format, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err = encode(f, format, v); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// parseMatrix reads a square matrix literal: rows separated by ';', entries
// by ',' or whitespace. "1,0.5;0.5,2" is a 2×2 matrix.
func parseMatrix(lit string) (*mat.Dense, error) {
	rows := strings.Split(strings.TrimSpace(lit), ";")
	var (
		data []float64
		cols = -1
	)
	for i, row := range rows {
		fields := strings.FieldsFunc(row, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
		if cols >= 0 && len(fields) != cols {
			return nil, errors.Newf("matrix %q: row %d has %d entries, want %d", lit, i, len(fields), cols)
		}
		cols = len(fields)
		for _, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "matrix %q", lit)
			}
			data = append(data, x)
		}
	}
	if cols <= 0 {
		return nil, errors.Newf("matrix %q is empty", lit)
	}

	return mat.NewDense(len(rows), cols, data), nil
}

// rowsOf exports m as nested slices.
func rowsOf(m mat.Matrix) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}

	return out
}

// renderTable writes a titled pterm table of m.
func renderTable(w io.Writer, title string, m mat.Matrix) error {
	r, c := m.Dims()
	data := make(pterm.TableData, 0, r+1)
	header := []string{""}
	for j := 0; j < c; j++ {
		header = append(header, fmt.Sprintf("[%d]", j))
	}
	data = append(data, header)
	for i := 0; i < r; i++ {
		row := []string{fmt.Sprintf("[%d]", i)}
		for j := 0; j < c; j++ {
			row = append(row, strconv.FormatFloat(m.At(i, j), 'g', 6, 64))
		}
		data = append(data, row)
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "render table")
	}
	_, err = fmt.Fprintf(w, "%s\n%s\n", title, table)

	return err
}
