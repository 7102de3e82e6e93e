package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "sona",
		Short:   "Sona — voice assistant with rate-limited, cached Gemini access",
		Version: version,
	}

	root.AddCommand(
		newListenCmd(),
		newAskCmd(),
		newHistoryCmd(),
		newLimitsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
