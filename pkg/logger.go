package tracehist

// Logger receives diagnostics from the binning engine. The module argument
// names the component emitting the message, as in the bracketed log format.
type Logger interface {
	Info(message string, module string)
	Warn(message string, module string)
	Error(string)
}

type nopLogger struct{}

func (nopLogger) Info(string, string) {}
func (nopLogger) Warn(string, string) {}
func (nopLogger) Error(string)        {}

// NopLogger discards every diagnostic.
var NopLogger Logger = nopLogger{}
