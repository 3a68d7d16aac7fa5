package main

import "github.com/emrgen/cadeia/cmd"

func main() {
	cmd.Execute()
}
