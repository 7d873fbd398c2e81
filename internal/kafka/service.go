package kafka

import (
	"context"

	"go.uber.org/fx"
)

type Service struct {
	Records *Records
	Probe   *Probe
}

func NewService(lc fx.Lifecycle, records *Records, probe *Probe) *Service {
	service := &Service{
		Records: records,
		Probe:   probe,
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return service.Shutdown(context.Background())
		},
	})
	return service
}

func (s *Service) Shutdown(_ context.Context) error {
	s.Records.CloseAll()
	return nil
}
