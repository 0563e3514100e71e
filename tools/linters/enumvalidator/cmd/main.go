package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"pressroom.app/pressroom/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
