package notifier

import (
	"context"
	"fmt"
	"io"

	"github.com/julianstephens/murmur/internal/constants"
	"github.com/julianstephens/murmur/internal/models"
)

// PrintSender writes notifications to w instead of showing them.
type PrintSender struct {
	w io.Writer
}

func NewPrintSender(w io.Writer) *PrintSender {
	return &PrintSender{w: w}
}

func (p *PrintSender) Send(_ context.Context, n models.Notification) error {
	_, err := fmt.Fprintf(p.w, "[%s] %s: %s\n", n.FireAt.Format(constants.DateTimeFormat), n.Title, n.Body)
	return err
}
