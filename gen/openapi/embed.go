// Package openapi встраивает OpenAPI описание GatewayService.
// Исходник хранится в YAML, клиентам отдаётся JSON.
package openapi

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed gateway.openapi.yaml
var content embed.FS

const specFile = "gateway.openapi.yaml"

var (
	once     sync.Once
	specJSON []byte
	specErr  error
)

// GetSpec возвращает спецификацию в JSON. Конвертация выполняется один раз.
func GetSpec() ([]byte, error) {
	once.Do(func() {
		specJSON, specErr = load()
	})
	return specJSON, specErr
}

// GetSpecYAML возвращает исходный YAML
func GetSpecYAML() ([]byte, error) {
	return content.ReadFile(specFile)
}

// MustGetSpec возвращает спецификацию или паникует
func MustGetSpec() []byte {
	data, err := GetSpec()
	if err != nil {
		panic("failed to load OpenAPI spec: " + err.Error())
	}
	return data
}

func load() ([]byte, error) {
	raw, err := content.ReadFile(specFile)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", specFile, err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", specFile, err)
	}
	return data, nil
}
