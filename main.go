package main

import "github.com/qobs-build/bootstrap/cmd"

func main() {
	cmd.Execute()
}
