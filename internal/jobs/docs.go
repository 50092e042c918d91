// Package jobs provides scheduled background tasks for the order service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. OrderStateReportJob - logs the number of orders per state on a configurable schedule
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(orderService, cfg.ReportSchedule, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules are six field cron expressions with seconds. The default
// "0 * * * * *" reports once a minute.
//
// # Error Handling
//
// - A failing report is logged and retried on the next tick
// - Failed job starts will stop any already running jobs
package jobs
