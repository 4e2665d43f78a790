// SPDX-License-Identifier: MIT

// Command fxpart partitions, estimates and matches computation graphs described
// in YAML.
//
//	fxpart partition model.yaml --device gpu0=1073741824 --device gpu1=1073741824
//	fxpart latency model.yaml --device gpu0=4096 --rate 0.5
//	fxpart match float.yaml quantized.yaml
//
// FXPART_DEBUG=1 enables debug logging on stderr.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
