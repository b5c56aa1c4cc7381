package main

import (
	"github/chapool/go-remotesigner/cmd"
)

func main() {
	cmd.Execute()
}
