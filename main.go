package main

import "github.com/confscan/confscan/cmd/confscan"

func main() { confscan.Execute() }
