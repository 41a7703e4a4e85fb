package ai

import (
	"context"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// offlineOracle stands in for a role that has no usable model. Every call
// fails as unavailable, which sends callers down their fallback paths.
type offlineOracle struct {
	reason string
}

func newOfflineOracle(reason string) ports.TextOracle {
	return &offlineOracle{reason: reason}
}

func (o *offlineOracle) Name() string {
	return "offline"
}

func (o *offlineOracle) Complete(context.Context, ports.OracleRequest) (string, error) {
	return "", domain.Errorf(domain.KindOracleUnavailable, "oracle.offline", "%s", o.reason)
}
