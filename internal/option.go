package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	input    string
	plotPath string
	edfPath  string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithInput sets the recording to decode: a container file path or the
// basename of a set of sibling log files.
func WithInput(path string) Option {
	return func(a *application) {
		a.input = path
	}
}

// WithPlotOutput enables trace rendering to the given image path.
func WithPlotOutput(path string) Option {
	return func(a *application) {
		a.plotPath = path
	}
}

// WithEDFOutput enables EDF export to the given path.
func WithEDFOutput(path string) Option {
	return func(a *application) {
		a.edfPath = path
	}
}
