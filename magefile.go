//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

// Build compiles every executable into ./bin
func Build() error {
	mg.Deps(BuildTracehist)
	mg.Deps(BuildMeasureLevels)
	fmt.Println("Compilation finished")
	return nil
}

func BuildTracehist() error {
	fmt.Println("Building tracehist executable...")
	return goCommand("build", "-o", "./bin/tracehist", "./tracehist")
}

func BuildMeasureLevels() error {
	fmt.Println("Building measureLevels executable...")
	return goCommand("build", "-o", "./bin/measureLevels", "./measureLevels")
}

// Test runs the unit tests. HDF5 must be available to cgo.
func Test() error {
	fmt.Println("Running tests...")
	return goCommand("test", "./...")
}

func goCommand(args ...string) error {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
