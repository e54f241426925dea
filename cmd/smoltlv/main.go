package main

import "github.com/logicossoftware/go-smoltlv/cmd/smoltlv/cmd"

func main() {
	cmd.Execute()
}
