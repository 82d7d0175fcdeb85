// Package console reads single keypresses for the interactive toggles in
// streaming mode. It only activates on a real terminal; piped stdin is
// left alone for the line stream.
package console

import (
	"os"

	"golang.org/x/term"
)

// Keys puts the terminal into raw mode and streams keypresses. The
// returned restore func must be called before exit to put the terminal
// back; the channel closes when reading fails (terminal gone).
//
// Returns ok=false without side effects when f is not a terminal.
func Keys(f *os.File) (keys <-chan rune, restore func(), ok bool) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, nil, false
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, false
	}

	ch := make(chan rune)
	go func() {
		defer close(ch)
		buf := make([]byte, 1)
		for {
			n, err := f.Read(buf)
			if err != nil {
				return
			}
			if n == 1 {
				ch <- rune(buf[0])
			}
		}
	}()

	return ch, func() { term.Restore(fd, oldState) }, true
}
