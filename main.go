// The main package for the casesearch executable.
package main

import (
	"github.com/opencourts/casesearch/cmd"
)

func main() {
	cmd.Execute()
}
