package application

import (
	"context"
	"fmt"

	"github.com/revshift/revshift-server/internal/domain"
)

// RolloutService executes traffic rollouts as durable workflows.
type RolloutService struct {
	Workflow domain.RolloutRunner
}

// Execute starts the rollout workflow for the request and waits for it
// to complete.
func (s *RolloutService) Execute(ctx context.Context, req domain.RolloutRequest) error {
	handle, err := s.Workflow.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("start rollout workflow: %w", err)
	}
	_, err = handle.AwaitResult(ctx)
	return err
}
