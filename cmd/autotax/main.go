package main

import "github.com/stwalsh4118/autotax/internal/cmd"

func main() {
	cmd.Execute()
}
