package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errPromptUnavailable = errors.New("password prompt needs an interactive terminal")

// readPasswordNoEcho reads one line from stdin with terminal echo switched
// off for the duration of the read.
func readPasswordNoEcho(stdin *os.File) (string, error) {
	if stdin == nil {
		return "", errPromptUnavailable
	}
	restore, err := disableEcho(stdin)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errPromptUnavailable, err)
	}
	defer restore()

	return readPromptLine(stdin)
}

func readPromptLine(input io.Reader) (string, error) {
	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
