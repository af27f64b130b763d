// Package safety gates destructive operations behind a confirmation prompt.
package safety

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Options captures the global safety flags.
type Options struct {
	// Yes answers every prompt affirmatively (non-interactive use).
	Yes bool
	// DryRun previews planned actions; prompts are treated as declined.
	DryRun bool
}

// Confirm asks the user to approve a destructive action, such as overwriting
// the live editor configuration. The caller decides what a declined answer
// means.
func Confirm(opts Options, in io.Reader, out io.Writer, question string) (bool, error) {
	if opts.DryRun {
		return false, nil
	}
	if opts.Yes {
		return true, nil
	}
	if out != nil {
		fmt.Fprintf(out, "%s [y/N]: ", strings.TrimSpace(question))
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.TrimSpace(strings.ToLower(line))
	return answer == "y" || answer == "yes", nil
}
