/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"os"

	"github.com/cristianoliveira/rx-intray/cmd"
	"github.com/cristianoliveira/rx-intray/internal/colors"
	"github.com/cristianoliveira/rx-intray/internal/config"
	"github.com/cristianoliveira/rx-intray/internal/logging"
)

// execute runs the root command. Tests replace it.
var execute = cmd.Execute

func main() {
	os.Exit(run())
}

func run() int {
	config.Load()
	colors.SetDebug(config.GetBool("debug", false))
	if err := logging.InitGlobal(); err != nil {
		colors.Warning("file logging disabled:", err.Error())
	}
	defer logging.ShutdownGlobal()

	logging.Info("startup", "args", os.Args[1:])
	if err := execute(); err != nil {
		logging.Error("command failed", "error", err)
		return 1
	}
	logging.Debug("command completed")
	return 0
}
