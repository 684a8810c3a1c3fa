package main

import (
	"riseup/cmd"
)

func main() {
	cmd.Execute()
}
