package main

import "github.com/polyscan/polyscan/cmd/polyscan"

func main() {
	polyscan.Execute()
}
