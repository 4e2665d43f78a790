// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/fxgraph/fx"
	"github.com/katalvlaran/fxgraph/latency"
	"github.com/katalvlaran/fxgraph/matcher"
	"github.com/katalvlaran/fxgraph/ops"
	"github.com/katalvlaran/fxgraph/partition"
)

// newLogger honors FXPART_DEBUG.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if v, _ := strconv.ParseBool(os.Getenv("FXPART_DEBUG")); v {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fxpart",
		Short:         "Partition, estimate and match computation graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.AddCommand(newPartitionCmd(), newLatencyCmd(), newMatchCmd())

	return root
}

// partitionFlags are shared by partition and latency.
type partitionFlags struct {
	devices []string
	sparse  bool
	combine bool
}

func (f *partitionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.devices, "device", "d", nil, "device as name=bytes, repeatable; logical IDs follow flag order")
	cmd.Flags().BoolVar(&f.sparse, "sparse", false, "give every embedding lookup its own device")
	cmd.Flags().BoolVar(&f.combine, "combine", false, "merge connected partitions that fit one device")
}

func (f *partitionFlags) run(cmd *cobra.Command, m *model) (*partition.Result, error) {
	devices, err := parseDevices(f.devices)
	if err != nil {
		return nil, err
	}
	opts := []partition.Option{partition.WithLogger(newLogger(cmd.ErrOrStderr()))}
	if f.sparse {
		opts = append(opts, partition.WithSparseNN())
	}
	if f.combine {
		opts = append(opts, partition.WithCombineSmallPartitions())
	}
	if err = fx.AnnotateSizes(m.gm, m.inputs...); err != nil {
		return nil, err
	}

	return partition.PartitionGraph(m.gm.Graph(), m.gm, partition.NewConfig(devices, opts...))
}

// parseDevices reads name=bytes specs.
func parseDevices(specs []string) ([]partition.Device, error) {
	out := make([]partition.Device, 0, len(specs))
	for i, s := range specs {
		name, size, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("fxpart: device %q: want name=bytes", s)
		}
		b, err := strconv.ParseInt(size, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "fxpart: device %q", s)
		}
		out = append(out, partition.Device{Name: name, AvailableMemBytes: b, LogicalID: i})
	}

	return out, nil
}

func newPartitionCmd() *cobra.Command {
	var (
		flags  partitionFlags
		verify bool
	)
	cmd := &cobra.Command{
		Use:   "partition MODEL",
		Short: "Split a model across devices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModel(args[0])
			if err != nil {
				return err
			}
			res, err := flags.run(cmd, m)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			var data [][]string
			for _, d := range res.DAG.Nodes {
				data = append(data, []string{
					d.SubmoduleNode.Name(),
					joinNodes(d.Partition.Nodes()),
					joinInts(d.LogicalDeviceIDs),
					strconv.FormatInt(d.Partition.UsedMemBytes(), 10),
					strconv.FormatInt(d.SizeBytes, 10),
					joinInts(d.Parents),
					joinInts(d.Children),
				})
			}
			table := tablewriter.NewWriter(w)
			table.SetHeader([]string{"SUBMODULE", "NODES", "DEVICES", "USED", "SIZE", "PARENTS", "CHILDREN"})
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.AppendBulk(data)
			table.Render()

			if verify {
				if err = verifyOutputs(m, res); err != nil {
					return err
				}
				fmt.Fprintln(w, "outputs match")
			}

			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&verify, "verify", false, "run both modules on the model inputs and compare outputs")

	return cmd
}

// verifyOutputs runs the original and partitioned modules on the model inputs.
func verifyOutputs(m *model, res *partition.Result) error {
	want, err := m.gm.Forward(m.inputs...)
	if err != nil {
		return errors.Wrap(err, "original module")
	}
	got, err := res.ModuleWithSubmodules.Forward(m.inputs...)
	if err != nil {
		return errors.Wrap(err, "partitioned module")
	}
	if !sameValue(want, got) {
		return errors.Errorf("fxpart: outputs differ: %v vs %v", want, got)
	}

	return nil
}

// sameValue compares tensors bitwise and tuples element by element.
func sameValue(a, b fx.Value) bool {
	switch av := a.(type) {
	case []fx.Value:
		bv, ok := b.([]fx.Value)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !sameValue(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *ops.Tensor:
		bv, ok := b.(*ops.Tensor)
		return ok && av.Equal(bv)
	default:
		return reflect.DeepEqual(a, b)
	}
}

func newLatencyCmd() *cobra.Command {
	var (
		flags partitionFlags
		rate  float64
	)
	cmd := &cobra.Command{
		Use:   "latency MODEL",
		Short: "Estimate the latency of a partitioned model",
		Long:  "Partitions MODEL like the partition command, then estimates each partition's critical path from the model's latencies section and the whole pipeline with --rate seconds per transferred byte.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModel(args[0])
			if err != nil {
				return err
			}
			res, err := flags.run(cmd, m)
			if err != nil {
				return err
			}
			perPartition, err := latency.PartitionToLatencyMapping(res.Partitions, m.latencies)
			if err != nil {
				return err
			}
			total, err := latency.LatencyOfPartitionedGraph(res.Partitions, perPartition, rate)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			table := tablewriter.NewWriter(w)
			table.SetHeader([]string{"PARTITION", "MEM", "COMPUTE", "OVERALL"})
			for _, p := range res.Partitions {
				l := perPartition[p]
				table.Append([]string{strconv.Itoa(p.ID()), formatSec(l.MemLatencySec), formatSec(l.ComputerLatencySec), formatSec(l.OverallLatencySec)})
			}
			table.Render()
			fmt.Fprintln(w, "total:", formatSec(total))

			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().Float64Var(&rate, "rate", 0, "transfer cost in seconds per byte between partitions")

	return cmd
}

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match MODEL_A MODEL_B",
		Short: "Pair corresponding subgraphs of two versions of a model",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadModel(args[0])
			if err != nil {
				return err
			}
			b, err := loadModel(args[1])
			if err != nil {
				return err
			}
			matches, err := matcher.GetMatchingSubgraphPairs(a.gm, b.gm, matcher.DefaultConfig())
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"NAME", "A START", "A END", "B START", "B END"})
			matches.Each(func(name string, p matcher.SubgraphPair) {
				table.Append([]string{name, p.A.Start.Name(), p.A.End.Name(), p.B.Start.Name(), p.B.End.Name()})
			})
			table.Render()

			return nil
		},
	}
}

func joinNodes(ns []*fx.Node) string {
	names := make([]string, len(ns))
	for i, n := range ns {
		names[i] = n.Name()
	}

	return strings.Join(names, ",")
}

func joinInts(xs []int) string {
	s := make([]string, len(xs))
	for i, x := range xs {
		s[i] = strconv.Itoa(x)
	}

	return strings.Join(s, ",")
}

func formatSec(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
