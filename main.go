package main

import "github.com/ValentinKolb/dLVB/cmd"

func main() {
	cmd.Execute()
}
