package frontend

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Cloud-Foundations/olvm/lib/log"
	"github.com/Cloud-Foundations/olvm/lib/log/prefixlogger"
)

const prompt = "> "

func serveConsole(reader io.Reader, writer io.Writer, dispatcher Dispatcher,
	logger log.DebugLogger) error {
	logger = prefixlogger.New("console: ", logger)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 4096), maxDatagramSize)
	fmt.Fprint(writer, prompt)
	for scanner.Scan() {
		command, payload := parse(scanner.Text())
		if command != "" {
			logger.Debugf(1, "%s\n", command)
			result, err := dispatcher.Dispatch("console", command, payload)
			if err != nil {
				fmt.Fprintln(writer, err)
			} else if result != "" {
				fmt.Fprintln(writer, result)
			}
		}
		fmt.Fprint(writer, prompt)
	}
	return scanner.Err()
}
