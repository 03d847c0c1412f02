package system

import (
	"github.com/julianstephens/murmur/internal/cli"
	"github.com/julianstephens/murmur/internal/mcpserver"
)

// McpCmd serves the reminder and voice note tools over stdio.
type McpCmd struct{}

func (c *McpCmd) Run(ctx *cli.Context) error {
	return mcpserver.New(ctx.Reminders, ctx.VoiceNotes).ServeStdio()
}
