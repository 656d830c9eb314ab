package main

import "github.com/quillae/scimpact/cmd"

func main() {
	cmd.Execute()
}
