package logging

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// CommandLineFormatter prints only the message, which is what a user running a command
// in a terminal expects to see. Warnings and errors are prefixed with their level.
type CommandLineFormatter struct{}

func (f *CommandLineFormatter) Format(entry *log.Entry) ([]byte, error) {
	switch entry.Level {
	case log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel:
		return []byte(fmt.Sprintf("%s: %s\n", entry.Level, entry.Message)), nil
	default:
		return []byte(fmt.Sprintf("%s\n", entry.Message)), nil
	}
}
