package voice

import (
	"fmt"
	"strings"

	"github.com/julianstephens/murmur/internal/cli"
)

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	notes, err := ctx.VoiceNotes.List(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to list voice notes: %w", err)
	}

	if len(notes) == 0 {
		fmt.Println("No voice notes.")
		return nil
	}

	fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("%-36s %-16s %s", "ID", "Recorded", "File")))
	fmt.Println(strings.Repeat("-", 100))
	for _, n := range notes {
		fmt.Printf("%-36s %-16s %s\n", n.ID, cli.FormatTime(n.CreatedAt), n.Path)
	}
	return nil
}
