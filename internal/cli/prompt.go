package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// readHiddenLine reads one line from terminal with echo turned off.
func readHiddenLine(terminal *os.File, reader *bufio.Reader) (string, error) {
	if terminal == nil {
		return "", errors.New("stdin unavailable")
	}
	restore, err := disableEcho(terminal)
	if err != nil {
		return "", err
	}
	defer restore()

	return readLine(reader)
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
