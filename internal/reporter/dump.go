package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"squawk/internal/ast"
)

// Dump formats understood by WriteDump.
const (
	DumpJSON = "json"
	DumpYAML = "yaml"
)

type fileDump struct {
	File        string                `json:"file" yaml:"file"`
	Statements  []ast.Node            `json:"statements" yaml:"statements"`
	Diagnostics []ast.ParseDiagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// WriteDump serializes the parsed statements of file as a tagged tree.
func WriteDump(w io.Writer, format, file string, stmts []ast.Statement, diags []ast.ParseDiagnostic) error {
	d := fileDump{File: file, Statements: ast.Dump(stmts), Diagnostics: diags}

	switch format {
	case DumpJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case DumpYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported dump format %q (want json or yaml)", format)
	}
}
