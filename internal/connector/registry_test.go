package connector

import (
	"context"
	"slices"
	"testing"

	"github.com/crimson-sun/authwatch/internal/model"
)

type stubConnector struct{}

func (stubConnector) Stream(context.Context, ConnectorConfig) (<-chan model.RawLog, error) {
	ch := make(chan model.RawLog)
	close(ch)
	return ch, nil
}

func (stubConnector) Query(context.Context, ConnectorConfig, QueryParams) ([]model.RawLog, error) {
	return nil, nil
}

func TestRegisterAndGet(t *testing.T) {
	Register("stub-test", func() Connector { return stubConnector{} })

	ctor, err := Get("stub-test")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := ctor().(stubConnector); !ok {
		t.Fatal("constructor returned the wrong connector")
	}
	if !slices.Contains(Providers(), "stub-test") {
		t.Errorf("Providers() = %v, missing stub-test", Providers())
	}
}

func TestGetUnknown(t *testing.T) {
	if _, err := Get("does-not-exist"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
