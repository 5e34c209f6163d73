package main

import (
	"os"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/cmd/hazardctl/tool/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
