package main

import "github.com/EO-DataHub/eodhp-kasm-services/cmd"

func main() {
	cmd.Execute()
}
