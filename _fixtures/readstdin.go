package main

import (
	"bufio"
	"os"
	"strings"
)

func main() {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		os.Exit(2)
	}
	if strings.TrimSpace(line) != "hello" {
		os.Exit(1)
	}
}
