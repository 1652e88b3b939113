package main

import "github.com/ethereal-go/ethereal/cmd"

func main() {
	cmd.Execute()
}
