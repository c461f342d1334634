// Package main provides the vidgen CLI tool.
//
// Usage:
//
//	vidgen [flags] <command> [args]
//
// Commands:
//
//	generate  - Generate a video from a text prompt
//	status    - Check a generation job once
//	wait      - Wait for a job and download the video
//	models    - List video-capable models
//	videos    - Manage the local video library
//	serve     - Serve the video library over HTTP
//	config    - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.vidgen/
//	Use 'vidgen config' commands to manage contexts.
package main

import (
	"os"

	"github.com/haivivi/vidgen/cmd/vidgen/commands"
	"github.com/haivivi/vidgen/pkg/cli"
	"github.com/haivivi/vidgen/pkg/videogen"
)

func main() {
	if err := commands.Execute(); err != nil {
		cli.PrintError("%s: %v", videogen.Category(err), err)
		os.Exit(commands.ExitCode(err))
	}
}
