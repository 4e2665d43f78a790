// SPDX-License-Identifier: MIT
//
// File: model.go
// Role: YAML model description → fx.GraphModule, sample inputs and node latencies.

package main

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/fxgraph/fx"
	"github.com/katalvlaran/fxgraph/latency"
	"github.com/katalvlaran/fxgraph/ops"
)

// errModel is wrapped by every model description error.
var errModel = errors.New("fxpart: invalid model")

type modelFile struct {
	Inputs    []inputSpec            `yaml:"inputs"`
	Modules   map[string]moduleSpec  `yaml:"modules"`
	Attrs     map[string]attrSpec    `yaml:"attrs"`
	Nodes     []nodeSpec             `yaml:"nodes"`
	Output    any                    `yaml:"output"`
	Latencies map[string]latencySpec `yaml:"latencies"`
}

type inputSpec struct {
	Name  string    `yaml:"name"`
	Value []float64 `yaml:"value"`
}

type moduleSpec struct {
	Type      string    `yaml:"type"`
	Rows      int       `yaml:"rows"`
	Cols      int       `yaml:"cols"`
	Weight    []float64 `yaml:"weight"`
	Bias      []float64 `yaml:"bias"`
	Scale     float64   `yaml:"scale"`
	ZeroPoint int       `yaml:"zero_point"`
}

// attrSpec is a matrix when Rows > 0, a tensor otherwise.
type attrSpec struct {
	Rows int       `yaml:"rows"`
	Cols int       `yaml:"cols"`
	Data []float64 `yaml:"data"`
}

// nodeSpec sets exactly one of Function, Module or Attr. Args name earlier
// nodes or inputs; numbers are literals and lists nest.
type nodeSpec struct {
	Name     string `yaml:"name"`
	Function string `yaml:"function"`
	Module   string `yaml:"module"`
	Attr     string `yaml:"attr"`
	Args     []any  `yaml:"args"`
}

type latencySpec struct {
	Mem     float64 `yaml:"mem"`
	Compute float64 `yaml:"compute"`
}

// model is a loaded description ready to run.
type model struct {
	gm        *fx.GraphModule
	inputs    []fx.Value
	latencies latency.NodeLatencies
}

var functions = map[string]*fx.Function{}

func init() {
	for _, f := range []*fx.Function{
		ops.Add, ops.OperatorAdd, ops.Mul, ops.Relu, ops.Linear, ops.Cat,
		ops.QuantizePerTensor, ops.Dequantize, ops.QAdd, ops.QCat, ops.QLinear, ops.QLinearReLU,
	} {
		functions[f.Name] = f
	}
}

func loadModel(path string) (*model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := parseModel(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	return m, nil
}

func parseModel(data []byte) (*model, error) {
	var f modelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(errModel, "%v", err)
	}
	g := fx.NewGraph()
	m := &model{gm: fx.NewGraphModule(g), latencies: latency.NodeLatencies{}}
	env := make(map[string]*fx.Node)

	// 1. Owner state
	for _, path := range sortedKeys(f.Modules) {
		mod, err := buildModule(f.Modules[path])
		if err != nil {
			return nil, errors.Wrapf(err, "module %s", path)
		}
		m.gm.AddSubmodule(path, mod)
	}
	for _, path := range sortedKeys(f.Attrs) {
		v, err := buildAttr(f.Attrs[path])
		if err != nil {
			return nil, errors.Wrapf(err, "attr %s", path)
		}
		m.gm.SetAttr(path, v)
	}
	// 2. Graph
	for _, in := range f.Inputs {
		n, err := g.Placeholder(in.Name)
		if err != nil {
			return nil, err
		}
		env[in.Name] = n
		m.inputs = append(m.inputs, ops.NewTensor(in.Value...))
	}
	for _, spec := range f.Nodes {
		n, err := buildNode(g, spec, env)
		if err != nil {
			return nil, errors.Wrapf(err, "node %s", spec.Name)
		}
		env[spec.Name] = n
	}
	result, err := resolveArg(f.Output, env)
	if err != nil {
		return nil, errors.Wrap(err, "output")
	}
	if _, err = g.Output(result); err != nil {
		return nil, err
	}
	// 3. Latencies
	for name, l := range f.Latencies {
		n, ok := env[name]
		if !ok {
			return nil, errors.Wrapf(errModel, "latency for unknown node %q", name)
		}
		m.latencies[n] = latency.NodeLatency{MemLatencySec: l.Mem, ComputerLatencySec: l.Compute}
	}

	return m, g.Lint()
}

func buildNode(g *fx.Graph, spec nodeSpec, env map[string]*fx.Node) (*fx.Node, error) {
	if _, dup := env[spec.Name]; dup || spec.Name == "" {
		return nil, errors.Wrapf(errModel, "missing or duplicate name %q", spec.Name)
	}
	args := make([]any, len(spec.Args))
	for i, a := range spec.Args {
		v, err := resolveArg(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	name := fx.WithNodeName(spec.Name)
	switch {
	case spec.Function != "" && spec.Module == "" && spec.Attr == "":
		fn, ok := functions[spec.Function]
		if !ok {
			return nil, errors.Wrapf(errModel, "unknown function %q", spec.Function)
		}
		return g.CallFunction(fn, args, name)
	case spec.Module != "" && spec.Function == "" && spec.Attr == "":
		return g.CallModule(spec.Module, args, name)
	case spec.Attr != "" && spec.Function == "" && spec.Module == "":
		return g.GetAttr(spec.Attr, name)
	default:
		return nil, errors.Wrap(errModel, "exactly one of function, module or attr is required")
	}
}

// resolveArg turns node names into nodes; numbers and nesting are kept.
func resolveArg(a any, env map[string]*fx.Node) (any, error) {
	switch v := a.(type) {
	case string:
		n, ok := env[v]
		if !ok {
			return nil, errors.Wrapf(errModel, "unknown node %q", v)
		}
		return n, nil
	case int, float64, bool:
		return v, nil
	case []any:
		out := make([]any, len(v))
		for i := range v {
			r, err := resolveArg(v[i], env)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, errors.Wrapf(errModel, "unsupported argument %v (%T)", a, a)
	}
}

func buildModule(s moduleSpec) (fx.Module, error) {
	var bias *ops.Tensor
	if len(s.Bias) > 0 {
		bias = ops.NewTensor(s.Bias...)
	}
	weight := func() (*ops.Matrix, error) { return ops.NewMatrix(s.Rows, s.Cols, s.Weight) }
	scalar := func(v []float64) float64 {
		if len(v) == 0 {
			return 0
		}
		return v[0]
	}
	switch s.Type {
	case "linear", "qat_linear", "linear_relu", "quantized_linear", "quantized_linear_relu":
		w, err := weight()
		if err != nil {
			return nil, err
		}
		switch s.Type {
		case "qat_linear":
			return ops.NewQATLinear(w, bias), nil
		case "linear_relu":
			return ops.NewLinearReLU(w, bias), nil
		case "quantized_linear":
			return ops.NewQuantizedLinear(w, bias, s.Scale, s.ZeroPoint), nil
		case "quantized_linear_relu":
			return ops.NewQuantizedLinearReLU(w, bias, s.Scale, s.ZeroPoint), nil
		}
		return ops.NewLinear(w, bias), nil
	case "embedding_bag":
		w, err := weight()
		if err != nil {
			return nil, err
		}
		return ops.NewEmbeddingBag(w), nil
	case "relu":
		return ops.ReLU{}, nil
	case "conv":
		return ops.NewConv(scalar(s.Weight), scalar(s.Bias)), nil
	case "qat_conv":
		return ops.NewQATConv(scalar(s.Weight), scalar(s.Bias)), nil
	case "conv_bn":
		return ops.NewConvBn(scalar(s.Weight), scalar(s.Bias)), nil
	case "quantized_conv":
		return ops.NewQuantizedConv(scalar(s.Weight), scalar(s.Bias), s.Scale, s.ZeroPoint), nil
	case "minmax_observer":
		return ops.NewMinMaxObserver(), nil
	case "fake_quantize":
		return ops.NewFakeQuantize(s.Scale, s.ZeroPoint), nil
	default:
		return nil, errors.Wrapf(errModel, "unknown module type %q", s.Type)
	}
}

func buildAttr(s attrSpec) (fx.Value, error) {
	if s.Rows > 0 {
		return ops.NewMatrix(s.Rows, s.Cols, s.Data)
	}

	return ops.NewTensor(s.Data...), nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}
