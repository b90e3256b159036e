package main

import (
	"fmt"
	"os"

	_ "time/tzdata"

	"github.com/use-agent/fahndung/config"
)

func main() {
	if err := config.LoadEnvFiles(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
