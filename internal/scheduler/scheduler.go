// Package scheduler runs periodic turn-store maintenance.
package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron            *cron.Cron
	spec            string
	maintenanceFunc func() error
}

func New(spec string) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		spec: spec,
	}
}

// SetMaintenanceFunc sets the job run on every tick, typically the
// turn store's trim-and-flush.
func (s *Scheduler) SetMaintenanceFunc(f func() error) {
	s.maintenanceFunc = f
}

func (s *Scheduler) Start() error {
	if s.maintenanceFunc == nil {
		log.Println("maintenance function not set, scheduler idle")
		return nil
	}
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.maintenanceFunc(); err != nil {
			log.Printf("history maintenance failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("scheduler started, history maintenance on %q (UTC)", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	log.Println("scheduler stopped")
}
