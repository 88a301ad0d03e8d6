// Package main is the entry point of the rxtk binary.
package main

import (
	"context"

	"go.rxlab.dev/toolbox/cmd/state"
	"go.rxlab.dev/toolbox/internal/cmd"
)

func main() {
	cmd.ExecuteWithGlobalState(state.NewGlobalState(context.Background()))
}
