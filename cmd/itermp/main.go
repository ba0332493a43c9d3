package main

import (
	"fmt"
	"os"
)

func main() {
	a := newApp(os.Stdout, os.Stderr)
	if err := a.rootCmd().Execute(); err != nil {
		if a.debugEnabled() {
			fmt.Fprintf(os.Stderr, "itermp: %+v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "itermp: %v\n", err)
		}
		os.Exit(exitCodeFromErr(err))
	}
}

func exitCodeFromErr(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
