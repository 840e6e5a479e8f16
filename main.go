package main

import "github.com/coshikowa/ms-go-agency/cmd"

func main() {
	cmd.Execute()
}
