// Package testservice is a small hosted service resolved per request: each
// request gets its own Service, built in the request's inner container from
// the application-wide Test, and disposed when the request ends.
package testservice

import (
	"fmt"
	"log/slog"
)

// Test is the collaborator every Service depends on.
type Test interface {
	Execute() string
}

type defaultTest struct{}

func (defaultTest) Execute() string { return "test" }

// NewTest returns the default Test.
func NewTest() Test { return defaultTest{} }

// CompositeType is the body of POST /data.
type CompositeType struct {
	BoolValue   bool   `json:"bool_value"`
	StringValue string `json:"string_value"`
}

// Service answers data requests. One instance lives per request scope.
type Service struct {
	test   Test
	logger *slog.Logger
	closed bool
}

// NewService is the constructor the container calls.
func NewService(test Test, logger *slog.Logger) *Service {
	logger.Debug("testservice: service instance constructed")
	return &Service{test: test, logger: logger}
}

// GetData formats value together with the Test's output.
func (s *Service) GetData(value int) string {
	return fmt.Sprintf("You entered: %d. This a %s.", value, s.test.Execute())
}

// GetDataUsingDataContract appends "Suffix" to StringValue when BoolValue
// is set.
func (s *Service) GetDataUsingDataContract(composite CompositeType) CompositeType {
	if composite.BoolValue {
		composite.StringValue += "Suffix"
	}
	return composite
}

// Closed reports whether the container has disposed s.
func (s *Service) Closed() bool { return s.closed }

// Close implements container.Disposable.
func (s *Service) Close() error {
	s.closed = true
	s.logger.Debug("testservice: service instance disposed")
	return nil
}
