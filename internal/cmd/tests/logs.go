package tests

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// LogContains checks whether any of the log entries has the given level and
// a message containing expContents.
func LogContains(logEntries []*logrus.Entry, expLevel logrus.Level, expContents string) bool {
	for _, entry := range logEntries {
		if entry.Level == expLevel && strings.Contains(entry.Message, expContents) {
			return true
		}
	}
	return false
}
