package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	lineReader *bufio.Reader
	lineSource io.Reader
)

// reader возвращает общий буферизованный reader поверх In,
// чтобы последовательные подсказки не теряли уже прочитанные данные.
func reader() *bufio.Reader {
	if lineReader == nil || lineSource != In {
		lineReader = bufio.NewReader(In)
		lineSource = In
	}
	return lineReader
}

// readLine печатает подсказку и читает строку без завершающего перевода строки.
func readLine(label string) (string, error) {
	if label != "" {
		fmt.Fprint(Out, label)
	}
	s, err := reader().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// readPassword читает пароль без эха, если ввод — терминал.
func readPassword(label string) (string, error) {
	if f, ok := In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(Out, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(Out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return readLine(label)
}

// argOrPrompt берёт значение из аргументов или спрашивает его.
func argOrPrompt(args []string, i int, label string) (string, error) {
	if i < len(args) {
		return args[i], nil
	}
	return readLine(label)
}
