package logging

import (
	"bytes"

	"github.com/sirupsen/logrus"
)

// tadpoleFormatter is a logrus.Formatter producing tadpole's log line
// layout: "<pid>:<DD Mon HH:MM:SS.mmm> <levelchar> <message>\n". It reads
// the pid/level/char fields logAt and Guru attach to every entry rather than
// logrus's own level, since logrus collapses tadpole's four levels onto
// three (Debug/Info/Warn).
type tadpoleFormatter struct{}

func (f *tadpoleFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var buf bytes.Buffer

	pid, _ := e.Data["pid"].(int)
	char, _ := e.Data["char"].(string)
	if char == "" {
		char = "."
	}

	buf.WriteString(itoa(pid))
	buf.WriteByte(':')
	buf.WriteString(e.Time.Format("02 Jan 15:04:05.000"))
	buf.WriteByte(' ')
	buf.WriteString(char)
	buf.WriteByte(' ')
	buf.WriteString(e.Message)
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}
