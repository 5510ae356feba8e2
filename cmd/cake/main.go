// Command cake keeps a cake of the year's wins.
package main

import "github.com/mesh-intelligence/cake/internal/cli"

func main() {
	cli.Execute()
}
