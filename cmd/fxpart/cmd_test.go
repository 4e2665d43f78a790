// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fxgraph/matcher"
	"github.com/katalvlaran/fxgraph/partition"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func TestPartitionCommand(t *testing.T) {
	out, err := execute(t, "partition", "testdata/residual.yaml",
		"-d", "a=250", "-d", "b=250", "-d", "c=250", "--verify")
	require.NoError(t, err)
	for _, want := range []string{"SUBMODULE", "submod_0", "submod_4", "fc1", "relu_1", "outputs match"} {
		assert.Contains(t, out, want)
	}
}

func TestPartitionCommand_Combine(t *testing.T) {
	out, err := execute(t, "partition", "testdata/residual.yaml",
		"-d", "a=250", "-d", "b=250", "-d", "c=100", "-d", "d=600", "--combine", "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "submod_0")
	assert.NotContains(t, out, "submod_1")
	assert.Contains(t, out, "outputs match")
}

func TestPartitionCommand_Errors(t *testing.T) {
	_, err := execute(t, "partition", "testdata/residual.yaml", "-d", "a=100")
	assert.ErrorIs(t, err, partition.ErrCapacity)

	_, err = execute(t, "partition", "testdata/residual.yaml")
	assert.ErrorIs(t, err, partition.ErrConfiguration, "no devices")

	_, err = execute(t, "partition", "testdata/missing.yaml", "-d", "a=100")
	assert.Error(t, err)

	_, err = execute(t, "partition")
	assert.Error(t, err)
}

func TestLatencyCommand(t *testing.T) {
	out, err := execute(t, "latency", "testdata/residual.yaml", "-d", "a=300", "-d", "b=300", "--rate", "0.5")
	require.NoError(t, err)
	assert.Contains(t, out, "OVERALL")
	assert.Contains(t, out, "total: 36")

	out, err = execute(t, "latency", "testdata/residual.yaml", "-d", "a=1000")
	require.NoError(t, err)
	assert.Contains(t, out, "total: 20")
}

func TestMatchCommand(t *testing.T) {
	out, err := execute(t, "match", "testdata/float.yaml", "testdata/quantized.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "fc_relu")
	assert.Contains(t, out, "head")
	assert.NotContains(t, out, "obs")

	_, err = execute(t, "match", "testdata/residual.yaml", "testdata/float.yaml")
	assert.ErrorIs(t, err, matcher.ErrGraphMatching)
}

func TestParseDevices(t *testing.T) {
	got, err := parseDevices([]string{"gpu0=10", "gpu1=20"})
	require.NoError(t, err)
	assert.Equal(t, []partition.Device{
		{Name: "gpu0", AvailableMemBytes: 10, LogicalID: 0},
		{Name: "gpu1", AvailableMemBytes: 20, LogicalID: 1},
	}, got)

	for _, bad := range []string{"gpu0", "=10", "gpu0=ten"} {
		_, err = parseDevices([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParseModel_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown function": "inputs: [{name: x}]\nnodes: [{name: y, function: nope, args: [x]}]\noutput: y",
		"unknown node":     "inputs: [{name: x}]\nnodes: [{name: y, function: relu, args: [z]}]\noutput: y",
		"duplicate name":   "inputs: [{name: x}]\nnodes: [{name: x, function: relu, args: [x]}]\noutput: x",
		"two kinds":        "inputs: [{name: x}]\nnodes: [{name: y, function: relu, module: m, args: [x]}]\noutput: y",
		"unknown module":   "modules: {m: {type: lstm}}\noutput: null",
		"bad latency":      "inputs: [{name: x}]\noutput: x\nlatencies: {y: {mem: 1}}",
		"bad yaml":         "nodes: {",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseModel([]byte(src))
			assert.ErrorIs(t, err, errModel)
		})
	}
}

func TestParseModel_Attrs(t *testing.T) {
	src := `
inputs: [{name: x, value: [1, 2]}]
attrs:
  w: {rows: 2, cols: 2, data: [1, 0, 0, 1]}
  b: {data: [0.5, 0.5]}
nodes:
  - {name: w, attr: w}
  - {name: b, attr: b}
  - {name: y, function: linear, args: [x, w, b]}
  - {name: z, function: cat, args: [[y, x]]}
output: z
`
	m, err := parseModel([]byte(src))
	require.NoError(t, err)
	out, err := m.gm.Forward(m.inputs...)
	require.NoError(t, err)
	assert.Equal(t, "[1.5 2.5 1 2]", out.(interface{ String() string }).String())
}

func TestNewLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf).Debug("hidden")
	assert.Empty(t, buf.String())

	t.Setenv("FXPART_DEBUG", "1")
	newLogger(&buf).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
