//go:build !velox

package bridge

// NewEngine returns an error indicating the native engine binding was not
// compiled in. Rebuild with: go build -tags velox
func NewEngine() (Engine, error) {
	return nil, ErrEngineNotEnabled
}
