package main

import (
	"github.com/jgbaldwinbrown/irisgwas/pkg"
)

func main() {
	irisgwas.RunStudy()
}
