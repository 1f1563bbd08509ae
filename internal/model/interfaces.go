package model

// Reporter defines how to output results
type Reporter interface {
	Report(results []FileResult) error
}
