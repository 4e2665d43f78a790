// Package matcher pairs corresponding subgraphs of two computation graphs that
// represent the same model before and after a rewrite (operator fusion or
// numeric-precision conversion).
//
// What:
//
//   - SubgraphIterator walks a graph backwards from its output node(s) and yields
//     matchable subgraphs (start, end). Known fusion chains (relu after linear) are
//     absorbed into one subgraph; instrumentation nodes (quantize calls, observers,
//     fake-quantize modules) are skipped without interrupting the walk.
//   - GetMatchingSubgraphPairs advances the iterators of both graphs in lockstep and
//     requires every pair of start nodes to be related: same target type, or two
//     targets registered in the same related group (plain, quantized and fused
//     variants of one operation).
//
// Configuration is an explicit Config value; DefaultConfig returns a fresh copy on
// every call, so concurrent or customized matching runs never share tables.
//
// Errors:
//
//   - *GraphMatchingError (wraps ErrGraphMatching) with Kind CountMismatch or NotRelated
package matcher
