package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"bellman/pkg/api/solverv1"
	"bellman/pkg/domain"
)

// graphFile формат входного файла: граф плюс необязательные концы и метод
type graphFile struct {
	Source         string `json:"source,omitempty" yaml:"source,omitempty"`
	Target         string `json:"target,omitempty" yaml:"target,omitempty"`
	Method         string `json:"method,omitempty" yaml:"method,omitempty"`
	solverv1.Graph `yaml:",inline"`
}

// endpoints выбирает источник и цель: флаги, затем файл, затем роли узлов
func (f *graphFile) endpoints(source, target string) (string, string) {
	if source == "" {
		source = f.Source
	}
	if target == "" {
		target = f.Target
	}

	for _, n := range f.Nodes {
		if n == nil {
			continue
		}
		role, err := domain.ParseNodeRole(n.Role)
		if err != nil {
			continue
		}
		switch {
		case role == domain.RoleStart && source == "":
			source = n.Id
		case role == domain.RoleEnd && target == "":
			target = n.Id
		}
	}

	return source, target
}

func loadGraphFile(path string) (*graphFile, error) {
	var gf graphFile
	if err := decodeFile(path, &gf); err != nil {
		return nil, fmt.Errorf("read graph %s: %w", path, err)
	}
	if len(gf.Nodes) == 0 {
		return nil, fmt.Errorf("read graph %s: no nodes", path)
	}
	return &gf, nil
}

// loadTraceFile читает трассу: полный SolveResponse или голый SolveResult
func loadTraceFile(path string) (*solverv1.SolveResponse, error) {
	var resp solverv1.SolveResponse
	if err := decodeFile(path, &resp); err != nil {
		return nil, fmt.Errorf("read trace %s: %w", path, err)
	}
	if resp.Result != nil {
		return &resp, nil
	}

	var result solverv1.SolveResult
	if err := decodeFile(path, &result); err != nil {
		return nil, fmt.Errorf("read trace %s: %w", path, err)
	}
	if len(result.Steps) == 0 {
		return nil, fmt.Errorf("read trace %s: no steps", path)
	}
	return &solverv1.SolveResponse{Result: &result}, nil
}

// decodeFile разбирает JSON или YAML; "-" читает stdin.
// Формат определяется по расширению, иначе по первому символу.
func decodeFile(path string, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	if isJSON(path, data) {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}

func isJSON(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return true
	case ".yaml", ".yml":
		return false
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
