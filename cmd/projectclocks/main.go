package main

import "github.com/goliatone/go-projectclocks/cmd/projectclocks/cmd"

func main() {
	cmd.Execute()
}
