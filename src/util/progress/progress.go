package progress

import (
	"fmt"
	"io"
	"time"
)

// printInterval throttles terminal updates during large transfers.
const printInterval = 250 * time.Millisecond

// Reader wraps an io.Reader and reports transfer progress to out as the
// stream is consumed. With a zero total only the byte count is shown.
type Reader struct {
	r           io.Reader
	out         io.Writer
	label       string
	total       int64
	read        int64
	lastPrinted time.Time
}

// NewReader returns a progress-reporting wrapper around r. A nil out
// disables reporting entirely.
func NewReader(r io.Reader, total int64, label string, out io.Writer) *Reader {
	return &Reader{r: r, out: out, label: label, total: total}
}

func (p *Reader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if now := time.Now(); now.Sub(p.lastPrinted) >= printInterval {
			p.print()
			p.lastPrinted = now
		}
	}
	if err == io.EOF && p.out != nil {
		p.print()
		fmt.Fprintln(p.out)
	}
	return n, err
}

func (p *Reader) print() {
	if p.out == nil {
		return
	}
	if p.total > 0 {
		pct := float64(p.read) / float64(p.total) * 100
		fmt.Fprintf(p.out, "\r%s: %3.0f%% (%d/%d bytes)", p.label, pct, p.read, p.total)
		return
	}
	fmt.Fprintf(p.out, "\r%s: %d bytes", p.label, p.read)
}
