package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gofgh/internal/config"
	"github.com/njchilds90/gofgh/internal/tools"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCall_Det(t *testing.T) {
	out, err := execute(t, "", "call", "fgh_det", `{"matrix": [[1, 2], [3, 4]]}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"det": -2}`, out)
}

func TestCall_Stdin(t *testing.T) {
	out, err := execute(t, `{"n": 2}`, "call", "fgh_identity")
	require.NoError(t, err)
	assert.JSONEq(t, `{"value": 1, "gradient": [0, 0], "hessian": [[0, 0], [0, 0]]}`, out)
}

func TestCall_LimitFromFlag(t *testing.T) {
	out, err := execute(t, "", "call", "--max-dimension=1", "fgh_norm", `{"vector": [3, 4]}`)
	assert.Error(t, err)
	assert.Contains(t, out, "limit is 1")
}

func TestCall_Errors(t *testing.T) {
	_, err := execute(t, "", "call", "fgh_nope", "{}")
	assert.ErrorContains(t, err, "unknown tool")

	_, err = execute(t, "", "call", "fgh_det", "[1]")
	assert.ErrorContains(t, err, "JSON object")

	_, err = execute(t, "", "call", "--mode=grpc", "fgh_det", "{}")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestAdminMux(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	reg := prometheus.NewRegistry()
	ts := tools.New(log, tools.NewMetrics(reg), tools.Limits{MaxDimension: 4, MaxDetOrder: 4})
	srv := httptest.NewServer(newAdminMux(reg, ts))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	var health map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&health))
	res.Body.Close()
	assert.Equal(t, "ok", health["status"])

	res, err = http.Get(srv.URL + "/schema")
	require.NoError(t, err)
	var schema struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&schema))
	res.Body.Close()
	require.Len(t, schema.Tools, 4)
	assert.Equal(t, tools.ToolApply, schema.Tools[0].Name)

	res, err = http.Post(srv.URL+"/schema", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestNewMCPServer_Registers(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	cfg := config.Default()
	s := newMCPServer(newToolServer(cfg, log, prometheus.NewRegistry()), log)
	res := s.HandleMessage(context.Background(), []byte(`{"jsonrpc": "2.0", "id": 1, "method": "tools/list"}`))
	b, err := json.Marshal(res)
	require.NoError(t, err)
	for _, name := range []string{tools.ToolApply, tools.ToolNorm, tools.ToolIdentity, tools.ToolDet} {
		assert.Contains(t, string(b), name)
	}
}
