// Package services holds the business logic between the HTTP handlers and the
// data pipeline.
//
// ReportService runs one pass of the pipeline: load the three unit tables,
// build the unified table, answer the eight questions and extract the chart
// inputs. Each pass gets a run id that is also its trace id, runs under
// "report.*" spans and records pipeline metrics. The last report is cached;
// concurrent Run calls share a single pass through singleflight.
//
// HealthService reports whether the source files exist and whether a report
// has been produced yet.
package services
