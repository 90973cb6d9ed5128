package signin

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vnma/vaxtui/internal/tui/styles"
)

const spinnerInterval = 80 * time.Millisecond

// WithSpinner runs work in the background and animates label on out until
// it returns
func WithSpinner[T any](out io.Writer, label string, work func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		v, err := work()
		resultCh <- result{v, err}
	}()

	frame := 0
	fmt.Fprintf(out, "\r%s %s", styles.SpinnerFrames[frame], label)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	// clears the spinner line
	blank := "\r" + strings.Repeat(" ", len([]rune(label))+4) + "\r"

	for {
		select {
		case res := <-resultCh:
			fmt.Fprint(out, blank)
			return res.value, res.err
		case <-ticker.C:
			frame++
			fmt.Fprintf(out, "\r%s %s", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)], label)
		}
	}
}
