// helmsman arbitrates control authority for remotely operated vehicles.
package main

import "github.com/oceanbotics/helmsman/internal/cli"

func main() {
	cli.Execute()
}
