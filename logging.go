package keyguard

import "github.com/sirupsen/logrus"

const component = "keyguard"

// operationFields builds the standard fields attached to every log entry.
func operationFields(operation string, additional ...logrus.Fields) logrus.Fields {
	fields := logrus.Fields{
		"component": component,
		"operation": operation,
	}
	for _, extra := range additional {
		for k, v := range extra {
			fields[k] = v
		}
	}
	return fields
}

func loggerOrDefault(l *logrus.Logger) *logrus.Logger {
	if l == nil {
		return logrus.StandardLogger()
	}
	return l
}
