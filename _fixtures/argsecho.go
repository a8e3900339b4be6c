package main

import (
	"fmt"
	"os"
	"strings"
)

func main() {
	fmt.Fprintln(os.Stderr, strings.Join(os.Args[1:], "|"))
	os.Exit(len(os.Args) - 1)
}
