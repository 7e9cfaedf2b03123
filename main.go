package main

import "github.com/chrisdamba/orderpulse/cmd"

func main() {
	cmd.Execute()
}
