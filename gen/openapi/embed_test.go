package openapi

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bellman/pkg/api/gatewayv1"
)

func TestGetSpec(t *testing.T) {
	data, err := GetSpec()
	require.NoError(t, err)

	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.True(t, strings.HasPrefix(doc.OpenAPI, "3."))

	for _, procedure := range []string{
		gatewayv1.GatewayServiceSolveProcedure,
		gatewayv1.GatewayServiceCompareProcedure,
		gatewayv1.GatewayServiceReconstructPathProcedure,
		gatewayv1.GatewayServiceGetTraceProcedure,
		gatewayv1.GatewayServiceListTracesProcedure,
		gatewayv1.GatewayServiceDeleteTraceProcedure,
		gatewayv1.GatewayServiceGetMethodsProcedure,
		gatewayv1.GatewayServiceHealthProcedure,
		gatewayv1.GatewayServiceInfoProcedure,
	} {
		ops, ok := doc.Paths[procedure]
		if assert.True(t, ok, "missing %s", procedure) {
			assert.Contains(t, ops, "post")
		}
	}
}

func TestGetSpecIsStable(t *testing.T) {
	a := MustGetSpec()
	b := MustGetSpec()
	assert.Equal(t, a, b)

	raw, err := GetSpecYAML()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Bellman Gateway API")
}
