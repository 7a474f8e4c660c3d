package main

import "source.quilibrium.com/quilibrium/monorepo/vdfsearch/cmd"

func main() {
	cmd.Execute()
}
